// Package facade is the small, non-blocking API the GUI drives (spec.md
// §4.9, C10). Every call returns a *streams.Stream handle that completes
// on a worker goroutine; the caller subscribes to Events() or, for
// simple callers, Collect()s the terminal result.
package facade

import (
	"context"

	"github.com/winpacman/core/internal/cache"
	"github.com/winpacman/core/internal/history"
	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/opsengine"
	"github.com/winpacman/core/internal/orchestrator"
	"github.com/winpacman/core/internal/providers"
	"github.com/winpacman/core/internal/providers/installedhelpers"
	"github.com/winpacman/core/internal/providers/scoop"
	"github.com/winpacman/core/internal/resolver"
)

// Facade is the single entry point the GUI (or the CLI demo) talks to.
type Facade struct {
	cache        *cache.Cache
	orchestrator *orchestrator.Orchestrator
	resolver     *resolver.Resolver
	ops          *opsengine.Engine
	history      *history.Store
	scoopHome    string
}

// Deps bundles the constructed collaborators. Callers assemble these
// once at startup (config, cache, providers, resolver, history).
type Deps struct {
	Cache         *cache.Cache
	Orchestrator  *orchestrator.Orchestrator
	Resolver      *resolver.Resolver
	History       *history.Store
	ScoopHome     string
	VerboseOutput bool
}

func New(d Deps) *Facade {
	f := &Facade{
		cache:        d.Cache,
		orchestrator: d.Orchestrator,
		resolver:     d.Resolver,
		history:      d.History,
		scoopHome:    d.ScoopHome,
	}
	f.ops = opsengine.New(d.History, rescanAdapter{f})
	f.ops.SetVerboseOutput(d.VerboseOutput)
	return f
}

// rescanAdapter implements opsengine.Rescanner by delegating to the
// façade's refresh_installed logic, kept as a distinct name so the
// façade's own RefreshInstalled can use the spec's ProgressStream shape
// instead of opsengine's plain-error contract.
type rescanAdapter struct{ f *Facade }

func (r rescanAdapter) RefreshInstalled(ctx context.Context) error {
	_, err := r.f.refreshInstalledSync(ctx)
	return err
}

const defaultSearchLimit = 50

// Search queries the cache's full-text index.
func (f *Facade) Search(ctx context.Context, query string, managers []model.Manager, limit int) *streamResult {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	s, ctx, emit := newResultStream(ctx)
	go func() {
		records, err := f.cache.Search(ctx, query, managers, limit)
		finish(emit, records, err)
	}()
	return s
}

// ListAvailable reads the cached catalog, never touching a provider.
func (f *Facade) ListAvailable(ctx context.Context, managers []model.Manager) *streamResult {
	s, ctx, emit := newResultStream(ctx)
	go func() {
		records, err := f.cache.ListAvailable(ctx, managers)
		finish(emit, records, err)
	}()
	return s
}

// ListInstalled reads the cached installed subset.
func (f *Facade) ListInstalled(ctx context.Context, managers []model.Manager) *streamResult {
	s, ctx, emit := newResultStream(ctx)
	go func() {
		records, err := f.cache.GetInstalled(ctx, managers, nil)
		finish(emit, records, err)
	}()
	return s
}

// Refresh drives one provider (or, with manager == "", every registered
// provider) through the orchestrator.
func (f *Facade) Refresh(ctx context.Context, manager model.Manager, force bool) *streamProgress {
	s, ctx, emit := newProgressStream(ctx)
	go func() {
		onProgress := func(p orchestrator.Progress) {
			emit(progressEvent(p))
		}
		if manager == "" {
			results := f.orchestrator.RefreshAll(ctx, force, 3, onProgress)
			finishSync(emit, results)
			return
		}
		meta, err := f.orchestrator.RefreshOne(ctx, manager, force, onProgress)
		finishMeta(emit, meta, err)
	}()
	return s
}

// RefreshInstalled runs the registry + scoop inventory scan, then the
// resolver, then merges the result into the cache (spec.md §4.9).
func (f *Facade) RefreshInstalled(ctx context.Context) *streamProgress {
	s, ctx, emit := newProgressStream(ctx)
	go func() {
		meta, err := f.refreshInstalledSync(ctx)
		finishMeta(emit, meta, err)
	}()
	return s
}

func (f *Facade) refreshInstalledSync(ctx context.Context) (model.SyncMetadata, error) {
	registryRecords, err := installedhelpers.ScanRegistry()
	if err != nil {
		return model.SyncMetadata{}, err
	}

	var scoopRecords []model.Record
	if f.scoopHome != "" {
		scoopRecords, err = scoop.ScanInstalled(f.scoopHome)
		if err != nil {
			return model.SyncMetadata{}, err
		}
	}

	merged := append(registryRecords, scoopRecords...)
	resolved := f.resolver.Resolve(ctx, merged)

	if err := f.cache.SyncInstalled(resolved); err != nil {
		return model.SyncMetadata{}, err
	}
	return model.SyncMetadata{PackageCount: len(resolved), LastSyncStatus: model.SyncSuccess}, nil
}

// Install runs the install command template for manager and streams
// progress, emitting an opsengine.Result as the terminal value.
func (f *Facade) Install(ctx context.Context, packageID string, manager model.Manager, version string) *streamOperation {
	s, ctx, emit := newOperationStream(ctx)
	go func() {
		result, err := f.ops.Install(ctx, packageID, manager, version, func(p opsengine.Progress) {
			emit(operationProgressEvent(p))
		})
		finishOperation(emit, result, err)
	}()
	return s
}

// Uninstall runs the uninstall command template for manager. A
// manager == unknown request is refused before anything is spawned.
func (f *Facade) Uninstall(ctx context.Context, packageID string, manager model.Manager) *streamOperation {
	s, ctx, emit := newOperationStream(ctx)
	go func() {
		result, err := f.ops.Uninstall(ctx, packageID, manager, func(p opsengine.Progress) {
			emit(operationProgressEvent(p))
		})
		finishOperation(emit, result, err)
	}()
	return s
}

// GetDetails returns the cached record, falling back to the live
// provider's FetchOne when the package is not in cache.
func (f *Facade) GetDetails(ctx context.Context, packageID string, manager model.Manager, provider providers.Provider) *streamRecord {
	s, ctx, emit := newRecordStream(ctx)
	go func() {
		cached, err := f.cache.Search(ctx, packageID, []model.Manager{manager}, 1)
		if err == nil && len(cached) > 0 {
			finishRecord(emit, cached[0], nil)
			return
		}
		if provider == nil {
			finishRecord(emit, model.Record{}, err)
			return
		}
		rec, ok, fetchErr := provider.FetchOne(ctx, packageID)
		if fetchErr != nil {
			finishRecord(emit, model.Record{}, fetchErr)
			return
		}
		if !ok {
			finishRecord(emit, model.Record{}, nil)
			return
		}
		finishRecord(emit, rec, nil)
	}()
	return s
}

// History returns the operation-history ring buffer.
func (f *Facade) History() ([]model.HistoryEntry, error) {
	return f.history.List()
}

// GetFreshnessSummary reports each registered provider's last-sync state.
func (f *Facade) GetFreshnessSummary(ctx context.Context, managers []model.Manager) (map[model.Manager]model.Freshness, error) {
	summary := make(map[model.Manager]model.Freshness, len(managers))
	for _, m := range managers {
		fresh, err := f.cache.Freshness(ctx, m)
		if err != nil {
			return nil, err
		}
		summary[m] = fresh
	}
	return summary, nil
}
