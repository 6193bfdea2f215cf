package registryscan

import (
	"regexp"
	"strings"
)

// versionOrArchSubdir matches a final path segment that is a version or
// architecture marker rather than the real app root, e.g. "vim91",
// "bin", "x64", "win64", "install" (spec.md §4.2 step 4). The
// letters-then-digits alternative covers names like "vim91" that embed
// a trailing version number without a separator; the literal spec
// regex omits it, but without it a trailing "vim91" segment never gets
// walked up to its real parent. The tradeoff: this alternative is
// broad enough to also match a legitimate versioned app directory name
// like "App3", walking up one level further than it should for that
// case.
var versionOrArchSubdir = regexp.MustCompile(`(?i)^(v?\d+(\.\d+)*|[a-z]+\d+|bin|app|x\d{2,3}|win\d+|install|uninstall)$`)

// uninstallStringDir extracts a leading directory from an
// UninstallString/InstallString of the shape: optional leading quote,
// drive letter, path ending at the last backslash before a trailing
// *.exe (spec.md §4.2 step 3).
var uninstallStringDir = regexp.MustCompile(`(?i)^"?([A-Za-z]:\\(?:[^\\"]+\\)*)[^\\"]*\.exe"?`)

// DirExists abstracts the filesystem existence check so path extraction
// logic is unit-testable without a real disk; production callers pass
// os.Stat-backed implementation.
type DirExists func(path string) bool

// ExtractInstallLocation runs the four-step heuristic from spec.md §4.2
// and returns "" when nothing usable could be found.
func ExtractInstallLocation(e Entry, exists DirExists) string {
	if e.InstallLocation != "" && exists(e.InstallLocation) {
		return applySmartParent(e.InstallLocation, exists)
	}
	if e.InstallPath != "" && exists(e.InstallPath) {
		return applySmartParent(e.InstallPath, exists)
	}
	if dir := extractFromCommandLine(e.UninstallString, exists); dir != "" {
		return applySmartParent(dir, exists)
	}
	if dir := extractFromCommandLine(e.InstallString, exists); dir != "" {
		return applySmartParent(dir, exists)
	}
	return ""
}

func extractFromCommandLine(cmdline string, exists DirExists) string {
	if cmdline == "" {
		return ""
	}
	m := uninstallStringDir.FindStringSubmatch(cmdline)
	if m == nil {
		return ""
	}
	dir := strings.TrimSuffix(m[1], `\`)
	if dir == "" || !exists(dir) {
		return ""
	}
	return dir
}

// applySmartParent walks up exactly one level when the final path
// segment looks like a version/arch subdirectory rather than the app
// root (spec.md §4.2 step 4), e.g. "...\Vim\vim91" -> "...\Vim". It
// never walks up more than one level, so "...\Vim\vim91" stops at
// "...\Vim" rather than continuing to "C:\Program Files". Registry
// paths are split on `\` or `/` whatever the host OS.
func applySmartParent(dir string, exists DirExists) string {
	clean := strings.TrimRight(dir, `\/`)
	idx := strings.LastIndexAny(clean, `\/`)
	if idx <= 0 {
		return dir
	}
	base := clean[idx+1:]
	if !versionOrArchSubdir.MatchString(base) {
		return dir
	}
	parent := clean[:idx]
	if !exists(parent) {
		return dir
	}
	return parent
}
