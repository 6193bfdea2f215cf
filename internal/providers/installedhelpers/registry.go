// Package installedhelpers adapts the registry scanner into installed
// package records with a best-effort manager fingerprint (spec.md
// §4.3.6). These are helpers, not catalog providers: they never supply
// a searchable catalog, only the installed-state half of a record.
package installedhelpers

import (
	"os"
	"strings"

	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/registryscan"
)

// ScanRegistry enumerates the Windows Uninstall keys and converts each
// entry into an installed model.Record with install-path extraction and
// a fingerprinted manager attribution.
func ScanRegistry() ([]model.Record, error) {
	entries, err := registryscan.Scan()
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(entries))
	for _, e := range entries {
		location := registryscan.ExtractInstallLocation(e, dirExists)
		fingerprint := Fingerprint(e.InstallSource, location)

		records = append(records, model.Record{
			PackageID:        e.SubKey,
			Name:             e.DisplayName,
			Manager:          fingerprint,
			IsInstalled:      true,
			InstalledVersion: e.DisplayVersion,
			Publisher:        e.Publisher,
			InstallDate:      e.ParsedInstallDate(),
			InstallSource:    fingerprint,
			InstallLocation:  location,
		})
	}
	return records, nil
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Fingerprint attaches a best-effort manager guess from Registry path
// substrings, per spec.md §4.3.6: InstallSource naming winget/
// appinstaller or chocolatey/choco is a strong signal; otherwise the
// install location is checked for scoop or WindowsApps (msstore).
func Fingerprint(installSource, installLocation string) model.Manager {
	src := strings.ToLower(installSource)
	loc := strings.ToLower(installLocation)

	switch {
	case strings.Contains(src, "winget"), strings.Contains(src, "appinstaller"):
		return model.ManagerWinget
	case strings.Contains(src, "chocolatey"), strings.Contains(src, "choco"):
		return model.ManagerChocolatey
	case strings.Contains(loc, "scoop"):
		return model.ManagerScoop
	case strings.Contains(loc, "windowsapps"):
		return model.ManagerMSStore
	default:
		return model.ManagerUnknown
	}
}
