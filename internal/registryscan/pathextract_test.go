package registryscan

import "testing"

func allExist(string) bool { return true }

func TestExtractInstallLocationPrefersInstallLocation(t *testing.T) {
	e := Entry{InstallLocation: `C:\Program Files\Widget`}
	got := ExtractInstallLocation(e, allExist)
	if got != `C:\Program Files\Widget` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractInstallLocationSmartParentVim(t *testing.T) {
	e := Entry{
		UninstallString: `C:\Program Files\Vim\vim91\uninstall.exe`,
	}
	got := ExtractInstallLocation(e, allExist)
	want := `C:\Program Files\Vim`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractInstallLocationNeverWalksUpTwoLevels(t *testing.T) {
	// Even if the grandparent also looks like a marker segment, only one
	// level of walk-up ever happens.
	e := Entry{
		UninstallString: `C:\Program Files\bin\install\uninstall.exe`,
	}
	got := ExtractInstallLocation(e, allExist)
	if got != `C:\Program Files\bin` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractInstallLocationFallsBackToInstallString(t *testing.T) {
	e := Entry{
		InstallString: `"C:\Apps\Tool\setup.exe"`,
	}
	got := ExtractInstallLocation(e, allExist)
	if got != `C:\Apps\Tool` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractInstallLocationNoneUsable(t *testing.T) {
	e := Entry{}
	got := ExtractInstallLocation(e, allExist)
	if got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestExtractInstallLocationNonexistentPathSkipped(t *testing.T) {
	none := func(string) bool { return false }
	e := Entry{InstallLocation: `C:\Ghost`}
	got := ExtractInstallLocation(e, none)
	if got != "" {
		t.Fatalf("expected empty when path does not exist, got %q", got)
	}
}
