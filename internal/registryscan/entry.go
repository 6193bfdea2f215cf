// Package registryscan enumerates the Windows Uninstall registry keys
// and extracts a best-effort install path per app (spec.md §4.2). The
// raw entry shape mirrors the teacher agent's RegistryApplication
// (pkg/status/status.go), extended with the fields spec.md requires.
package registryscan

import "time"

// Hive identifies which of the three Uninstall-key locations an Entry
// was read from.
type Hive string

const (
	HiveLocalMachine        Hive = "HKLM"
	HiveLocalMachineWow6432 Hive = "HKLM_WOW6432Node"
	HiveCurrentUser         Hive = "HKCU"
)

// Entry is one raw Uninstall-key record, before path extraction or
// manager fingerprinting.
type Entry struct {
	Hive            Hive
	SubKey          string
	DisplayName     string
	DisplayVersion  string
	Publisher       string
	InstallLocation string
	InstallSource   string
	InstallDate     string
	UninstallString string
	InstallString   string
	// InstallPath is occasionally present as a distinct value from
	// InstallLocation on older installers (spec.md §4.2 step 2).
	InstallPath string
}

// ParsedInstallDate best-effort parses the registry's InstallDate, which
// is conventionally YYYYMMDD; an unparsable or empty value yields the
// zero time rather than an error, since this is advisory metadata.
func (e Entry) ParsedInstallDate() time.Time {
	if len(e.InstallDate) != 8 {
		return time.Time{}
	}
	t, err := time.Parse("20060102", e.InstallDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
