package model

import "time"

// SyncStatus is the terminal state of a provider refresh.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncPartial SyncStatus = "partial"
	SyncFailed  SyncStatus = "failed"
)

// SyncMetadata tracks one provider's last refresh, used to compute
// freshness (spec.md §3 Sync-metadata record). Unique by Provider.
type SyncMetadata struct {
	Provider           Manager
	LastSyncStartedAt  time.Time
	LastSyncFinishedAt time.Time
	LastSyncStatus     SyncStatus
	PackageCount       int
	ErrorMessage       string
}

// Freshness is the read-side view handed to callers of
// cache.Cache.Freshness / the façade's GetFreshnessSummary.
type Freshness struct {
	Manager      Manager
	LastSyncAt   time.Time
	PackageCount int
	Status       SyncStatus
}

// OperationKind distinguishes install from uninstall in history entries.
type OperationKind string

const (
	OpInstall   OperationKind = "install"
	OpUninstall OperationKind = "uninstall"
)

// HistoryEntry is one row of the bounded operation-history ring buffer.
type HistoryEntry struct {
	Op        OperationKind `json:"op"`
	PackageID string        `json:"package_id"`
	Manager   Manager       `json:"manager"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// MaxHistoryEntries bounds the ring buffer per spec.md §3.
const MaxHistoryEntries = 100
