package scoop

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeBucketManifest(t *testing.T, root, bucket, pkg, body string) {
	t.Helper()
	dir := filepath.Join(root, bucket, "bucket")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, pkg+".json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFetchAllNormalizesStringLicense(t *testing.T) {
	root := t.TempDir()
	writeBucketManifest(t, root, "main", "vlc", `{"version": "3.0.20", "license": "GPL-3.0-or-later"}`)

	p := New(root)
	out, errc := p.FetchAll(context.Background())
	var found bool
	for rec := range out {
		if rec.PackageID == "vlc" {
			found = true
			if rec.License != "GPL-3.0-or-later" {
				t.Fatalf("expected plain license string, got %q", rec.License)
			}
		}
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected to find vlc")
	}
}

func TestFetchAllNormalizesObjectLicense(t *testing.T) {
	root := t.TempDir()
	writeBucketManifest(t, root, "main", "neovim", `{"version": "0.10.0", "license": {"identifier": "Apache-2.0", "url": "https://example.com"}}`)

	p := New(root)
	out, errc := p.FetchAll(context.Background())
	var rec *string
	for r := range out {
		if r.PackageID == "neovim" {
			l := r.License
			rec = &l
		}
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected to find neovim")
	}
	if *rec != "Apache-2.0" {
		t.Fatalf("expected extracted identifier, got %q", *rec)
	}
}

func TestFetchAllNoBucketsDirReturnsEmpty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
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
		t.Fatalf("expected zero records, got %d", count)
	}
}
