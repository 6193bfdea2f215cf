// Package config resolves winpacman's on-disk layout and loads its typed
// settings. Directory resolution follows spec.md §4.8's "XDG-style,
// Windows under %APPDATA%\Local\winpacman\" requirement via adrg/xdg,
// the same way vrdhn-package-installer (an example in the retrieval
// pack) resolves its own application directories.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "winpacman"

// Paths is the resolved set of directories the core reads from and
// writes to, per spec.md §4.8 and §6 (filesystem boundary).
type Paths struct {
	ConfigDir string // config/config.json
	DataDir   string // data/metadata_cache.db, data/history.json, data/logs
	CacheDir  string // reserved for transient downloads
}

// ResolvePaths returns the default XDG-resolved application directories.
func ResolvePaths() Paths {
	return Paths{
		ConfigDir: filepath.Join(xdg.ConfigHome, appName),
		DataDir:   filepath.Join(xdg.DataHome, appName),
		CacheDir:  filepath.Join(xdg.CacheHome, appName),
	}
}

func (p Paths) ConfigFile() string       { return filepath.Join(p.ConfigDir, "config.json") }
func (p Paths) HistoryFile() string      { return filepath.Join(p.DataDir, "history.json") }
func (p Paths) CacheDBFile() string      { return filepath.Join(p.DataDir, "metadata_cache.db") }
func (p Paths) LockFile() string         { return filepath.Join(p.DataDir, "winpacman.lock") }
func (p Paths) WinGetManifestsDir() string {
	return filepath.Join(p.CacheDir, "winget-manifests")
}

// The following paths are fixed by spec.md §6's filesystem boundary,
// not XDG-resolved: they name real locations the manager CLIs and
// WinGet own on a live Windows machine.

// ScoopHome is %USERPROFILE%\scoop.
func (p Paths) ScoopHome() string {
	return filepath.Join(os.Getenv("USERPROFILE"), "scoop")
}

// ScoopBucketsDir is %USERPROFILE%\scoop\buckets.
func (p Paths) ScoopBucketsDir() string {
	return filepath.Join(p.ScoopHome(), "buckets")
}

// ChocolateyLibDir is C:\ProgramData\chocolatey\.chocolatey, consulted
// by the resolver to cross-validate a chocolatey fingerprint.
func (p Paths) ChocolateyLibDir() string {
	return filepath.Join(os.Getenv("ProgramData"), "chocolatey", ".chocolatey")
}

// WinGetInstalledDB is the WinGet-owned SQLite file consulted (read-only,
// best-effort) to validate winget attribution; it is never the catalog.
func (p Paths) WinGetInstalledDB() string {
	return filepath.Join(os.Getenv("LOCALAPPDATA"), "Packages", "Microsoft.DesktopAppInstaller_8wekyb3d8bbwe", "LocalState", "installed.db")
}
