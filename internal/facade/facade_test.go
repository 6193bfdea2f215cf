package facade

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/winpacman/core/internal/cache"
	"github.com/winpacman/core/internal/history"
	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/orchestrator"
	"github.com/winpacman/core/internal/providers"
	"github.com/winpacman/core/internal/resolver"
)

type fakeProvider struct {
	name    model.Manager
	records []model.Record
}

func (f *fakeProvider) Name() model.Manager { return f.name }
func (f *fakeProvider) FetchAll(ctx context.Context) (<-chan model.Record, <-chan error) {
	out := make(chan model.Record, len(f.records))
	errc := make(chan error, 1)
	for _, r := range f.records {
		out <- r
	}
	close(out)
	close(errc)
	return out, errc
}
func (f *fakeProvider) FetchOne(ctx context.Context, packageID string) (model.Record, bool, error) {
	for _, r := range f.records {
		if r.PackageID == packageID {
			return r, true, nil
		}
	}
	return model.Record{}, false, nil
}
func (f *fakeProvider) IsStale(lastSync time.Time) bool { return true }

func newTestFacade(t *testing.T) (*Facade, providers.Provider) {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	p := &fakeProvider{name: model.ManagerNPM, records: []model.Record{
		{PackageID: "left-pad", Name: "left-pad", Manager: model.ManagerNPM},
	}}
	orch := orchestrator.New(c, p)
	res := resolver.New(c, "", "")
	h := history.New(filepath.Join(t.TempDir(), "history.json"))

	f := New(Deps{Cache: c, Orchestrator: orch, Resolver: res, History: h})
	return f, p
}

func TestRefreshThenSearchRoundTrip(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	_, err := f.Refresh(ctx, model.ManagerNPM, true).Collect()
	require.NoError(t, err)

	records, err := f.Search(ctx, "left-pad", nil, 0).Collect()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "left-pad", records[0].PackageID)
}

func TestListAvailablePullsFromCacheNotProvider(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	records, err := f.ListAvailable(ctx, []model.Manager{model.ManagerNPM}).Collect()
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = f.Refresh(ctx, model.ManagerNPM, true).Collect()
	require.NoError(t, err)

	records, err = f.ListAvailable(ctx, []model.Manager{model.ManagerNPM}).Collect()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestUninstallUnattributedManagerReturnsError(t *testing.T) {
	f, _ := newTestFacade(t)
	_, err := f.Uninstall(context.Background(), "anything", model.ManagerUnknown).Collect()
	require.Error(t, err)
}

func TestGetDetailsFallsBackToProvider(t *testing.T) {
	f, p := newTestFacade(t)
	rec, err := f.GetDetails(context.Background(), "left-pad", model.ManagerNPM, p).Collect()
	require.NoError(t, err)
	require.Equal(t, "left-pad", rec.PackageID)
}

func TestGetFreshnessSummaryForUnsyncedProviderIsZeroValue(t *testing.T) {
	f, _ := newTestFacade(t)
	summary, err := f.GetFreshnessSummary(context.Background(), []model.Manager{model.ManagerCargo})
	require.NoError(t, err)
	require.Equal(t, model.ManagerCargo, summary[model.ManagerCargo].Manager)
	require.True(t, summary[model.ManagerCargo].LastSyncAt.IsZero())
}
