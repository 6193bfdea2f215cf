package winget

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

// defaultStaleAfter is WinGet's freshness budget (spec.md §4.5): at most
// once a day unless the caller forces a refresh or config.Settings
// overrides it via SetStaleAfter.
const defaultStaleAfter = 24 * time.Hour

// Provider walks a local clone of the WinGet manifest repository.
type Provider struct {
	root       string
	staleAfter time.Duration

	mu             sync.Mutex
	latestVersions map[string][]string
}

func New(manifestRoot string) *Provider {
	return &Provider{root: manifestRoot, staleAfter: defaultStaleAfter}
}

func (p *Provider) Name() model.Manager { return model.ManagerWinget }

// SetStaleAfter overrides the freshness budget, normally sourced from
// config.Settings.MaxAge so an operator's sync.max_age_days setting
// actually governs RefreshOne's skip-if-fresh check.
func (p *Provider) SetStaleAfter(d time.Duration) { p.staleAfter = d }

func (p *Provider) IsStale(lastSync time.Time) bool {
	return lastSync.IsZero() || time.Since(lastSync) > p.staleAfter
}

// FetchAll implements the scan/collapse/normalize/emit pipeline of
// spec.md §4.3.1: walk the tree, dedupe on (PackageIdentifier,
// PackageVersion), keep the latest version as the emitted record while
// retaining every version seen in p.latestVersions for install targeting.
func (p *Provider) FetchAll(ctx context.Context) (<-chan model.Record, <-chan error) {
	out := make(chan model.Record, 64)
	errc := make(chan error, 1)
	log := logging.Component("winget")

	go func() {
		defer close(out)
		defer close(errc)

		type seenKey struct{ id, version string }
		seen := make(map[seenKey]bool)
		latest := make(map[string]model.Record)
		versions := make(map[string][]string)
		var malformed int

		walkErr := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if d.IsDir() || filepath.Ext(path) != ".yaml" {
				return nil
			}
			if classify(path) == kindLocale {
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				malformed++
				return nil
			}
			rec, ok := parseManifest(data)
			if !ok {
				malformed++
				return nil
			}

			key := seenKey{id: rec.PackageID, version: rec.Version}
			if seen[key] {
				return nil
			}
			seen[key] = true
			versions[rec.PackageID] = append(versions[rec.PackageID], rec.Version)

			cur, exists := latest[rec.PackageID]
			if !exists || versionGreater(rec.Version, cur.Version) {
				rec.LastSeenAt = time.Now()
				latest[rec.PackageID] = rec
			}
			return nil
		})
		if walkErr != nil && walkErr != context.Canceled {
			errc <- walkErr
			return
		}
		if malformed > 0 {
			log.Warn("skipped malformed winget manifests", "count", malformed)
		}

		p.mu.Lock()
		p.latestVersions = versions
		p.mu.Unlock()

		for _, rec := range latest {
			select {
			case <-ctx.Done():
				return
			case out <- rec:
			}
		}
	}()

	return out, errc
}

// Versions satisfies providers.Versioned: the full set of every version
// seen per package, for C5's auxiliary package_versions store.
func (p *Provider) Versions() []model.VersionEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.VersionEntry
	for id, vs := range p.latestVersions {
		for _, v := range vs {
			out = append(out, model.VersionEntry{PackageID: id, Manager: model.ManagerWinget, Version: v})
		}
	}
	return out
}

// FetchOne re-walks the tree looking for the newest manifest matching
// packageID. WinGet has no single-package HTTP endpoint in the local
// manifest-clone model, so detail enrichment is a targeted walk rather
// than a network call.
func (p *Provider) FetchOne(ctx context.Context, packageID string) (model.Record, bool, error) {
	ch, errc := p.FetchAll(ctx)
	var best model.Record
	found := false
	for rec := range ch {
		if rec.PackageID == packageID {
			if !found || versionGreater(rec.Version, best.Version) {
				best = rec
				found = true
			}
		}
	}
	if err := <-errc; err != nil {
		return model.Record{}, false, err
	}
	return best, found, nil
}

// versionGreater reports whether a should replace b as the "latest"
// version, preferring a real semver comparison (hashicorp/go-version)
// and falling back to lexical ordering for the non-semver version
// strings WinGet manifests occasionally carry.
func versionGreater(a, b string) bool {
	if b == "" {
		return true
	}
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	if errA == nil && errB == nil {
		return va.GreaterThan(vb)
	}
	return a > b
}
