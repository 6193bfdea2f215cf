package scoop

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/winpacman/core/internal/model"
)

// ScanInstalled walks <userProfile>\scoop\apps\<name>\current\manifest.json
// for every locally installed Scoop app (spec.md §4.3.6). Scoop
// deliberately never writes to the Registry, so this is the only source
// of truth for Scoop-installed packages.
func ScanInstalled(scoopHome string) ([]model.Record, error) {
	appsDir := filepath.Join(scoopHome, "apps")
	entries, err := os.ReadDir(appsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []model.Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		manifestPath := filepath.Join(appsDir, name, "current", "manifest.json")
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		var m struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(data, &m); err != nil || m.Version == "" {
			continue
		}
		records = append(records, model.Record{
			PackageID:        name,
			Name:             name,
			Manager:          model.ManagerScoop,
			IsInstalled:      true,
			InstalledVersion: m.Version,
			InstallSource:    model.ManagerScoop,
			InstallLocation:  filepath.Join(appsDir, name, "current"),
			LastSeenAt:       time.Now(),
		})
	}
	return records, nil
}
