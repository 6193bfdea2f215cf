package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/winpacman/core/internal/model"
)

func TestAppendPersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := New(path)

	s.Append(model.HistoryEntry{Op: model.OpInstall, PackageID: "vlc", Manager: model.ManagerChocolatey, Success: true, Timestamp: time.Unix(1, 0)})

	reopened := New(path)
	entries, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "vlc", entries[0].PackageID)
}

func TestAppendEvictsOldestPastMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := New(path)

	for i := 0; i < model.MaxHistoryEntries+10; i++ {
		s.Append(model.HistoryEntry{Op: model.OpInstall, PackageID: "pkg", Timestamp: time.Unix(int64(i), 0)})
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, model.MaxHistoryEntries)
	require.Equal(t, time.Unix(10, 0), entries[0].Timestamp)
	require.Equal(t, time.Unix(int64(model.MaxHistoryEntries+9), 0), entries[len(entries)-1].Timestamp)
}

func TestListOnMissingFileReturnsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist.json"))
	entries, err := s.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}
