package model

import "testing"

func TestBuildSearchTokensContainsIDAndName(t *testing.T) {
	r := &Record{
		PackageID:   "Microsoft.VisualStudioCode",
		Name:        "Visual Studio Code",
		Description: "Code editing. Redefined.",
		Tags:        []string{"Editor", "IDE"},
	}
	r.BuildSearchTokens()

	for _, want := range []string{"microsoft.visualstudiocode", "visual", "studio", "code", "editor", "ide"} {
		if !contains(r.SearchTokens, want) {
			t.Errorf("search tokens %q missing %q", r.SearchTokens, want)
		}
	}
}

func TestBuildSearchTokensIsCaseInsensitive(t *testing.T) {
	r1 := &Record{PackageID: "vlc", Name: "VLC Media Player"}
	r2 := &Record{PackageID: "VLC", Name: "vlc media player"}
	r1.BuildSearchTokens()
	r2.BuildSearchTokens()
	if r1.SearchTokens != r2.SearchTokens {
		t.Errorf("expected case-insensitive token equality, got %q vs %q", r1.SearchTokens, r2.SearchTokens)
	}
}

func TestNormalizeVariantString(t *testing.T) {
	s, ok := NormalizeVariant("MIT")
	if !ok || s != "MIT" {
		t.Fatalf("got %q, %v", s, ok)
	}
}

func TestNormalizeVariantObjectLicense(t *testing.T) {
	v := map[string]any{"identifier": "MIT", "url": "https://example.com"}
	s, ok := NormalizeVariant(v)
	if !ok || s != "MIT" {
		t.Fatalf("got %q, %v", s, ok)
	}
}

func TestNormalizeVariantIntTag(t *testing.T) {
	s, ok := NormalizeVariant(2024)
	if !ok || s != "2024" {
		t.Fatalf("got %q, %v", s, ok)
	}
}

func TestNormalizeVariantEmptyObjectFails(t *testing.T) {
	_, ok := NormalizeVariant(map[string]any{"unrelated": "x"})
	if ok {
		t.Fatalf("expected normalization to fail for unrecognized object shape")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
