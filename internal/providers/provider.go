// Package providers defines the uniform capability set every ecosystem
// adapter implements (spec.md §4.3): name, a lazy fetch-all stream, an
// on-demand fetch-one, and a staleness policy. Providers never mutate
// the cache; they only emit records to the orchestrator.
package providers

import (
	"context"
	"time"

	"github.com/winpacman/core/internal/model"
)

// Provider is implemented once per ecosystem (winget, chocolatey, scoop,
// npm, cargo).
type Provider interface {
	Name() model.Manager

	// FetchAll streams the provider's full catalog onto the returned
	// channel and closes it when done or when ctx is cancelled. A
	// malformed record is skipped (counted and logged), not fatal to the
	// stream; a fatal provider error closes the channel early and is sent
	// on the returned error channel.
	FetchAll(ctx context.Context) (<-chan model.Record, <-chan error)

	// FetchOne performs on-demand detail enrichment; ok is false when
	// the id does not exist upstream.
	FetchOne(ctx context.Context, packageID string) (rec model.Record, ok bool, err error)

	// IsStale reports whether lastSync is old enough to warrant a
	// refresh under this provider's freshness policy.
	IsStale(lastSync time.Time) bool
}

// Versioned is implemented by providers that also populate the
// auxiliary package_versions store (presently only WinGet).
type Versioned interface {
	Versions() []model.VersionEntry
}
