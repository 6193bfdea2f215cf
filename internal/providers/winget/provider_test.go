package winget

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestFetchAllDedupesVersionsAndLocales mirrors spec.md §8 scenario 2:
// three manifests for Microsoft.VisualStudioCode (two installer
// manifests at 1.94.0/1.93.0, one locale manifest at 1.94.0) collapse
// to one emitted record at the highest version with two known versions.
func TestFetchAllDedupesVersionsAndLocales(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "m", "Microsoft", "VisualStudioCode")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeManifest(t, pkgDir, "1.94.0.installer.yaml", `
PackageIdentifier: Microsoft.VisualStudioCode
PackageVersion: "1.94.0"
PackageName: Visual Studio Code
Publisher: Microsoft Corporation
`)
	writeManifest(t, pkgDir, "1.94.0.locale.en-US.yaml", `
PackageIdentifier: Microsoft.VisualStudioCode
PackageVersion: "1.94.0"
PackageName: Visual Studio Code (localized)
`)
	writeManifest(t, pkgDir, "1.93.0.installer.yaml", `
PackageIdentifier: Microsoft.VisualStudioCode
PackageVersion: "1.93.0"
PackageName: Visual Studio Code
Publisher: Microsoft Corporation
`)

	p := New(root)
	out, errc := p.FetchAll(context.Background())

	var records []string
	for rec := range out {
		records = append(records, rec.Version)
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one emitted record, got %d: %v", len(records), records)
	}
	if records[0] != "1.94.0" {
		t.Fatalf("expected latest version 1.94.0, got %s", records[0])
	}

	versions := p.Versions()
	if len(versions) != 2 {
		t.Fatalf("expected two package_versions rows, got %d: %+v", len(versions), versions)
	}
}

func TestFetchAllSkipsLocaleOnlyManifests(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "x", "X", "Thing")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, pkgDir, "1.0.locale.fr-FR.yaml", `
PackageIdentifier: X.Thing
PackageVersion: "1.0"
PackageName: Thing (FR)
`)

	p := New(root)
	out, errc := p.FetchAll(context.Background())
	var count int
	for range out {
		count++
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero records from a locale-only tree, got %d", count)
	}
}
