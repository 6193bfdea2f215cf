package installedhelpers

import (
	"testing"

	"github.com/winpacman/core/internal/model"
)

func TestFingerprintWinget(t *testing.T) {
	if got := Fingerprint("Microsoft.DesktopAppInstaller", ""); got != model.ManagerWinget {
		t.Fatalf("got %s", got)
	}
}

func TestFingerprintChocolatey(t *testing.T) {
	if got := Fingerprint("", `C:\ProgramData\chocolatey\lib\vlc`); got != model.ManagerUnknown {
		// InstallSource, not InstallLocation, carries the chocolatey
		// signal per spec.md §4.3.6; a chocolatey path in the location
		// alone does not fingerprint as chocolatey.
		t.Fatalf("got %s", got)
	}
	if got := Fingerprint("chocolatey", ""); got != model.ManagerChocolatey {
		t.Fatalf("got %s", got)
	}
}

func TestFingerprintScoopFromLocation(t *testing.T) {
	if got := Fingerprint("", `C:\Users\me\scoop\apps\vim\current`); got != model.ManagerScoop {
		t.Fatalf("got %s", got)
	}
}

func TestFingerprintMSStoreFromWindowsApps(t *testing.T) {
	if got := Fingerprint("", `C:\Program Files\WindowsApps\SomeApp`); got != model.ManagerMSStore {
		t.Fatalf("got %s", got)
	}
}

func TestFingerprintUnknownByDefault(t *testing.T) {
	if got := Fingerprint("", `C:\Program Files\RandomThing`); got != model.ManagerUnknown {
		t.Fatalf("got %s", got)
	}
}
