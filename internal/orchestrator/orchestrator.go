// Package orchestrator drives providers on demand or periodically,
// respecting freshness policy, per-provider single-flight coalescing,
// bounded parallelism, and power management (spec.md §4.5, C6).
package orchestrator

import (
	"context"
	"sync"

	"github.com/alitto/pond/v2"

	"github.com/winpacman/core/internal/cache"
	"github.com/winpacman/core/internal/errs"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/power"
	"github.com/winpacman/core/internal/providers"
)

// Phase is a progress-event stage, per spec.md §4.5.
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhaseFetching Phase = "fetching"
	PhaseParsing  Phase = "parsing"
	PhaseWriting  Phase = "writing"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
)

// Progress is one coalesced event emitted to subscribers during a sync.
type Progress struct {
	Provider model.Manager
	Phase    Phase
	Current  int
	Total    int
	Message  string
}

// Orchestrator drives the registered providers. Zero value is not
// usable; construct with New.
type Orchestrator struct {
	cache     *cache.Cache
	providers map[model.Manager]providers.Provider

	// inflight coalesces concurrent refresh_one(provider) calls onto
	// the one already running, mirroring the teacher's sync.Once-guarded
	// logger singleton (pkg/logging/logging.go) generalized to a map of
	// per-provider futures.
	mu       sync.Mutex
	inflight map[model.Manager]*refreshFuture
}

type refreshFuture struct {
	done chan struct{}
	meta model.SyncMetadata
	err  error
}

func New(c *cache.Cache, provs ...providers.Provider) *Orchestrator {
	m := make(map[model.Manager]providers.Provider, len(provs))
	for _, p := range provs {
		m[p.Name()] = p
	}
	return &Orchestrator{
		cache:     c,
		providers: m,
		inflight:  make(map[model.Manager]*refreshFuture),
	}
}

// RefreshOne refreshes a single provider, coalescing concurrent callers
// for the same provider onto one in-flight sync (spec.md §5 Ordering).
// If force is false and the provider's cache slice is not stale, this
// is a no-op.
func (o *Orchestrator) RefreshOne(ctx context.Context, manager model.Manager, force bool, onProgress func(Progress)) (model.SyncMetadata, error) {
	p, ok := o.providers[manager]
	if !ok {
		return model.SyncMetadata{}, errs.New(errs.KindProviderUnavailable, string(manager)+" provider is not registered")
	}

	if !force {
		fresh, err := o.cache.Freshness(ctx, manager)
		if err == nil && !p.IsStale(fresh.LastSyncAt) {
			return model.SyncMetadata{Provider: manager, LastSyncStatus: fresh.Status, PackageCount: fresh.PackageCount}, nil
		}
	}

	o.mu.Lock()
	if f, running := o.inflight[manager]; running {
		o.mu.Unlock()
		<-f.done
		return f.meta, f.err
	}
	f := &refreshFuture{done: make(chan struct{})}
	o.inflight[manager] = f
	o.mu.Unlock()

	release := power.Guard()
	defer release()

	coalesced := newCoalescer(onProgress)
	defer coalesced.flush()

	coalesced.emit(Progress{Provider: manager, Phase: PhaseStarting})
	recordsCh, providerErrc := p.FetchAll(ctx)

	piped := make(chan model.Record, 64)
	go func() {
		defer close(piped)
		var count int
		for rec := range recordsCh {
			count++
			coalesced.emit(Progress{Provider: manager, Phase: PhaseFetching, Current: count})
			select {
			case piped <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	coalesced.emit(Progress{Provider: manager, Phase: PhaseWriting})
	meta, err := o.cache.Refresh(ctx, manager, piped)
	if providerErr := <-providerErrc; providerErr != nil && err == nil {
		err = providerErr
	}
	if versioned, ok := p.(providers.Versioned); ok && err == nil {
		_ = o.cache.UpsertVersions(manager, versioned.Versions())
	}

	if err != nil {
		coalesced.emit(Progress{Provider: manager, Phase: PhaseFailed, Message: err.Error()})
	} else {
		coalesced.emit(Progress{Provider: manager, Phase: PhaseDone, Current: meta.PackageCount, Total: meta.PackageCount})
	}

	f.meta, f.err = meta, err
	close(f.done)

	o.mu.Lock()
	delete(o.inflight, manager)
	o.mu.Unlock()

	return meta, err
}

// RefreshAll runs every registered provider, bounded to the given
// degree of parallelism (spec.md §4.5: 2-3), using alitto/pond/v2 as a
// worker pool.
func (o *Orchestrator) RefreshAll(ctx context.Context, force bool, parallelism int, onProgress func(Progress)) map[model.Manager]error {
	log := logging.Component("orchestrator")
	if parallelism <= 0 {
		parallelism = 2
	}
	pool := pond.NewPool(parallelism)

	results := make(map[model.Manager]error)
	var mu sync.Mutex

	for manager := range o.providers {
		manager := manager
		pool.Submit(func() {
			_, err := o.RefreshOne(ctx, manager, force, onProgress)
			if err != nil {
				log.Warn("provider refresh failed", "provider", manager, "error", err)
			}
			mu.Lock()
			results[manager] = err
			mu.Unlock()
		})
	}

	pool.StopAndWait()
	return results
}
