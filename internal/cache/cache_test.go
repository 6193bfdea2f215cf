package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/winpacman/core/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "metadata_cache.db"))
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func recordsChan(records ...model.Record) <-chan model.Record {
	ch := make(chan model.Record, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)
	return ch
}

func TestRefreshThenSearchFindsRecord(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	rec := model.Record{
		PackageID: "python", Name: "Python", Manager: model.ManagerChocolatey,
		Version: "3.12.1", Description: "A high-level language", LastSeenAt: time.Now(),
	}
	meta, err := c.Refresh(ctx, model.ManagerChocolatey, recordsChan(rec))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if meta.PackageCount != 1 || meta.LastSyncStatus != model.SyncSuccess {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	results, err := c.Search(ctx, "python", []model.Manager{model.ManagerChocolatey}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].PackageID != "python" {
		t.Fatalf("expected python hit, got %+v", results)
	}
}

func TestSearchIsCaseAndWhitespaceInsensitive(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	rec := model.Record{PackageID: "vscode", Name: "Visual Studio Code", Manager: model.ManagerWinget}
	if _, err := c.Refresh(ctx, model.ManagerWinget, recordsChan(rec)); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	for _, q := range []string{"Visual Studio Code", "visual  studio  code", "VISUAL STUDIO CODE"} {
		results, err := c.Search(ctx, q, nil, 10)
		if err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
		if len(results) != 1 {
			t.Fatalf("search %q: expected 1 hit, got %d", q, len(results))
		}
	}
}

func TestSearchDotReturnsEmptyWithoutError(t *testing.T) {
	c := openTestCache(t)
	results, err := c.Search(context.Background(), ".", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearchPlusPlusDoesNotRaise(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	rec := model.Record{PackageID: "cpp-compiler", Name: "c++ compiler", Manager: model.ManagerScoop}
	if _, err := c.Refresh(ctx, model.ManagerScoop, recordsChan(rec)); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_, err := c.Search(ctx, "c++", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error searching c++: %v", err)
	}
}

func TestRefreshReplacesPriorSlice(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	first := model.Record{PackageID: "a", Name: "A", Manager: model.ManagerNPM}
	if _, err := c.Refresh(ctx, model.ManagerNPM, recordsChan(first)); err != nil {
		t.Fatalf("refresh 1: %v", err)
	}
	second := model.Record{PackageID: "b", Name: "B", Manager: model.ManagerNPM}
	if _, err := c.Refresh(ctx, model.ManagerNPM, recordsChan(second)); err != nil {
		t.Fatalf("refresh 2: %v", err)
	}

	results, err := c.Search(ctx, "a", []model.Manager{model.ManagerNPM}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected package a to be gone after replacement, got %+v", results)
	}
}

func TestRefreshCancellationLeavesCommittedRowsOnly(t *testing.T) {
	c := openTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan model.Record)
	go func() {
		for i := 0; i < 3; i++ {
			ch <- model.Record{PackageID: "pkg", Name: "pkg", Manager: model.ManagerChocolatey, Version: "1.0"}
		}
		cancel()
		close(ch)
	}()

	meta, err := c.Refresh(ctx, model.ManagerChocolatey, ch)
	if err == nil {
		t.Fatal("expected sync_aborted error")
	}
	if meta.LastSyncStatus != model.SyncFailed {
		t.Fatalf("expected failed status, got %s", meta.LastSyncStatus)
	}
}

func TestFindManagerFallsThroughToDisplayName(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	rec := model.Record{PackageID: "Charmbracelet.neo-cowsay", Name: "Neo Cowsay", Manager: model.ManagerWinget}
	if _, err := c.Refresh(ctx, model.ManagerWinget, recordsChan(rec)); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	manager, ok, err := c.FindManager(ctx, "unknown-id", "Neo Cowsay")
	if err != nil {
		t.Fatalf("find manager: %v", err)
	}
	if !ok || manager != model.ManagerWinget {
		t.Fatalf("expected winget via display name, got %s, %v", manager, ok)
	}
}

func TestFindManagerNoHit(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.FindManager(context.Background(), "nope", "Nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}

func TestSyncInstalledClearsThenReattributes(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	cached := model.Record{PackageID: "Charmbracelet.neo-cowsay", Name: "Neo Cowsay", Manager: model.ManagerWinget}
	if _, err := c.Refresh(ctx, model.ManagerWinget, recordsChan(cached)); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	installed := model.Record{
		PackageID: "Charmbracelet.neo-cowsay", Manager: model.ManagerWinget,
		InstalledVersion: "1.0.0", InstallSource: model.ManagerWinget, InstallLocation: `C:\Tools\neo-cowsay`,
	}
	if err := c.SyncInstalled([]model.Record{installed}); err != nil {
		t.Fatalf("sync installed: %v", err)
	}

	rows, err := c.GetInstalled(ctx, nil, nil)
	if err != nil {
		t.Fatalf("get installed: %v", err)
	}
	if len(rows) != 1 || !rows[0].IsInstalled || rows[0].InstallSource != model.ManagerWinget {
		t.Fatalf("unexpected installed rows: %+v", rows)
	}
}

func TestFreshnessUnknownProviderIsZeroValue(t *testing.T) {
	c := openTestCache(t)
	f, err := c.Freshness(context.Background(), model.ManagerCargo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.PackageCount != 0 || !f.LastSyncAt.IsZero() {
		t.Fatalf("expected zero-value freshness, got %+v", f)
	}
}
