package scoop

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

// Provider reads locally cloned Scoop bucket manifests. Scoop has no
// freshness budget beyond "on every explicit refresh" (spec.md §4.5),
// so IsStale always reports true.
type Provider struct {
	bucketsRoot string
}

func New(bucketsRoot string) *Provider {
	return &Provider{bucketsRoot: bucketsRoot}
}

func (p *Provider) Name() model.Manager { return model.ManagerScoop }

func (p *Provider) IsStale(time.Time) bool { return true }

// FetchAll walks <bucketsRoot>/<bucket>/bucket/*.json, one manifest per
// package, as spec.md §4.3.3 describes.
func (p *Provider) FetchAll(ctx context.Context) (<-chan model.Record, <-chan error) {
	out := make(chan model.Record, 64)
	errc := make(chan error, 1)
	log := logging.Component("scoop")

	go func() {
		defer close(out)
		defer close(errc)

		buckets, err := os.ReadDir(p.bucketsRoot)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			errc <- err
			return
		}

		var malformed int
		for _, bucket := range buckets {
			if !bucket.IsDir() {
				continue
			}
			manifestsDir := filepath.Join(p.bucketsRoot, bucket.Name(), "bucket")
			entries, err := os.ReadDir(manifestsDir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
					continue
				}
				packageID := strings.TrimSuffix(e.Name(), ".json")
				data, err := os.ReadFile(filepath.Join(manifestsDir, e.Name()))
				if err != nil {
					malformed++
					continue
				}
				rec, ok := parseManifest(packageID, data)
				if !ok {
					malformed++
					continue
				}
				rec.LastSeenAt = time.Now()
				select {
				case <-ctx.Done():
					return
				case out <- rec:
				}
			}
		}
		if malformed > 0 {
			log.Warn("skipped malformed scoop manifests", "count", malformed)
		}
	}()

	return out, errc
}

func (p *Provider) FetchOne(ctx context.Context, packageID string) (model.Record, bool, error) {
	buckets, err := os.ReadDir(p.bucketsRoot)
	if err != nil {
		return model.Record{}, false, err
	}
	for _, bucket := range buckets {
		path := filepath.Join(p.bucketsRoot, bucket.Name(), "bucket", packageID+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		rec, ok := parseManifest(packageID, data)
		return rec, ok, nil
	}
	return model.Record{}, false, nil
}
