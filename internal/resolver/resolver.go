// Package resolver attributes installed records coming from the
// Registry scanner to a real manager (spec.md §4.6, C7). It never
// invents an attribution without a cache match or a fingerprint
// confirmed by manager-owned evidence.
package resolver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/winpacman/core/internal/cache"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/providers/winget"
)

// Resolver cross-validates and rewrites installed-record attribution.
type Resolver struct {
	cache             *cache.Cache
	wingetInstalledDB string
	chocolateyLibDir  string
}

func New(c *cache.Cache, wingetInstalledDB, chocolateyLibDir string) *Resolver {
	return &Resolver{cache: c, wingetInstalledDB: wingetInstalledDB, chocolateyLibDir: chocolateyLibDir}
}

// Resolve rewrites install_source (and manager, for display) on each
// record whose fingerprint is unknown or suspect, per spec.md §4.6's
// three-step contract: cache lookup, fingerprint cross-validation,
// downgrade to unknown when evidence disagrees.
func (r *Resolver) Resolve(ctx context.Context, records []model.Record) []model.Record {
	log := logging.Component("resolver")
	out := make([]model.Record, len(records))

	for i, rec := range records {
		resolved := rec

		if rec.InstallSource == model.ManagerUnknown {
			if manager, ok, err := r.cache.FindManager(ctx, rec.PackageID, rec.Name); err == nil && ok {
				resolved.InstallSource = manager
				resolved.Manager = manager
				log.Debug("resolved via cache", "package_id", rec.PackageID, "manager", manager)
			}
		} else if ok := r.crossValidate(rec.InstallSource, rec.PackageID); !ok {
			log.Debug("downgrading unsubstantiated fingerprint", "package_id", rec.PackageID, "fingerprint", rec.InstallSource)
			resolved.InstallSource = model.ManagerUnknown
			resolved.Manager = model.ManagerUnknown
		}

		out[i] = resolved
	}
	return out
}

// crossValidate checks manager-owned evidence for a confident
// fingerprint, per spec.md §4.6 step 3. Managers with no owned-evidence
// source (scoop, msstore) pass through unchallenged.
func (r *Resolver) crossValidate(fingerprint model.Manager, packageID string) bool {
	switch fingerprint {
	case model.ManagerWinget:
		if r.wingetInstalledDB == "" {
			return true
		}
		ok, err := winget.IsKnownToInstalledDB(r.wingetInstalledDB, packageID)
		if err != nil {
			// installed.db being unreadable is not evidence against the
			// fingerprint; fail open rather than mass-downgrade.
			return true
		}
		return ok
	case model.ManagerChocolatey:
		if r.chocolateyLibDir == "" {
			return true
		}
		info, err := os.Stat(filepath.Join(r.chocolateyLibDir, packageID))
		return err == nil && info.IsDir()
	default:
		return true
	}
}
