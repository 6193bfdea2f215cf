// Package scoop reads local bucket manifests
// (%USERPROFILE%\scoop\buckets\<bucket>\bucket\*.json) and the installed
// apps under %USERPROFILE%\scoop\apps (spec.md §4.3.3, §4.3.6). Scoop
// deliberately never touches the Windows Registry, so its installed
// inventory is a separate on-disk walk.
package scoop

import (
	"encoding/json"

	"github.com/winpacman/core/internal/model"
)

// manifest is one bucket *.json file. License is dynamically typed: a
// plain string or an object carrying an "identifier" field (spec.md
// §4.3.3), so it is decoded as json.RawMessage and normalized separately.
type manifest struct {
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Homepage    string          `json:"homepage"`
	License     json.RawMessage `json:"license"`
}

func parseManifest(packageID string, data []byte) (model.Record, bool) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Record{}, false
	}
	if m.Version == "" {
		return model.Record{}, false
	}

	rec := model.Record{
		PackageID: packageID,
		Name:      packageID,
		Version:   m.Version,
		Manager:   model.ManagerScoop,

		Description: m.Description,
		Homepage:    m.Homepage,
	}

	if len(m.License) > 0 {
		var variant any
		if err := json.Unmarshal(m.License, &variant); err == nil {
			if s, ok := model.NormalizeVariant(variant); ok {
				rec.License = s
			}
		}
	}

	rec.BuildSearchTokens()
	return rec, true
}
