// Package model holds the canonical package record shared by every
// provider, the cache, and the façade. Nothing in this package talks to a
// network, a subprocess, or the registry; it is pure data plus the small
// amount of normalization logic spec'd as part of the record itself.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Manager is the closed set of package ecosystems this core understands.
// msstore and unknown only ever appear as installed-record attribution;
// neither supplies a catalog.
type Manager string

const (
	ManagerWinget     Manager = "winget"
	ManagerChocolatey Manager = "chocolatey"
	ManagerScoop      Manager = "scoop"
	ManagerNPM        Manager = "npm"
	ManagerCargo      Manager = "cargo"
	ManagerMSStore    Manager = "msstore"
	ManagerUnknown    Manager = "unknown"
)

// IsCatalogProvider reports whether m is a manager capable of supplying a
// catalog (as opposed to appearing only as installed-record attribution).
func (m Manager) IsCatalogProvider() bool {
	switch m {
	case ManagerWinget, ManagerChocolatey, ManagerScoop, ManagerNPM, ManagerCargo:
		return true
	default:
		return false
	}
}

func (m Manager) Valid() bool {
	switch m {
	case ManagerWinget, ManagerChocolatey, ManagerScoop, ManagerNPM, ManagerCargo, ManagerMSStore, ManagerUnknown:
		return true
	default:
		return false
	}
}

// Record is the canonical normalized package shape used throughout the
// core. (manager, package_id) is unique wherever Records are stored.
type Record struct {
	PackageID string
	Name      string
	Version   string
	Manager   Manager

	Description string
	Publisher   string
	Homepage    string
	License     string
	Tags        []string

	SearchTokens string

	IsInstalled      bool
	InstalledVersion string
	InstallDate      time.Time
	InstallSource    Manager
	InstallLocation  string

	LastSeenAt time.Time
}

// BuildSearchTokens regenerates the lowercased whitespace-split union of
// id, name, description and tags, as required on every upsert. It always
// contains lower(package_id) and lower(name) as substrings.
func (r *Record) BuildSearchTokens() {
	var b strings.Builder
	writeTokens := func(s string) {
		for _, tok := range strings.Fields(strings.ToLower(s)) {
			b.WriteString(tok)
			b.WriteByte(' ')
		}
	}
	writeTokens(r.PackageID)
	writeTokens(r.Name)
	writeTokens(r.Description)
	for _, t := range r.Tags {
		writeTokens(t)
	}
	r.SearchTokens = strings.TrimSpace(b.String())
}

// VersionEntry is one row of the auxiliary package_versions store
// (spec.md §4.4): every version a provider has ever seen for a package,
// used by WinGet install targeting even though only the latest becomes
// Record.Version.
type VersionEntry struct {
	PackageID string
	Manager   Manager
	Version   string
}

// Key is the (manager, package_id) identity spec.md requires to be unique.
type Key struct {
	Manager   Manager
	PackageID string
}

func (r *Record) Key() Key {
	return Key{Manager: r.Manager, PackageID: r.PackageID}
}

// NormalizeVariant coerces a dynamically-typed YAML/JSON scalar (string,
// int, float, bool, or a map carrying one of a few well-known string
// fields) down to a single string, as spec'd for WinGet tag values and
// Scoop's string-or-object license field. ok is false when nothing
// string-like could be extracted, signalling the caller to drop the
// record field (and count a parse warning) rather than store garbage.
func NormalizeVariant(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool, int, int64, float64:
		return toString(val), true
	case map[string]any:
		for _, key := range []string{"identifier", "id", "name", "value"} {
			if s, ok := val[key].(string); ok && s != "" {
				return s, true
			}
		}
		return "", false
	case []any:
		// Tags sometimes arrive as a list containing mixed scalar types;
		// the caller is expected to iterate and normalize each element.
		return "", false
	default:
		return "", false
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
