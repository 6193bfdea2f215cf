// Package winget walks a local clone of the WinGet community manifest
// repository (spec.md §4.3.1): a directory tree of
// manifests/<letter>/<Publisher>/<PackageName>/<Version>/*.yaml files,
// each decoded with gopkg.in/yaml.v3 in the same typed-struct idiom the
// teacher's pkg/manifest package uses for its own YAML documents.
package winget

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/winpacman/core/internal/model"
)

// installerManifest is the subset of a WinGet installer manifest this
// provider cares about. Tags frequently decode as non-string scalars
// (integers, booleans) upstream; those fields are read as any and
// passed through model.NormalizeVariant.
type installerManifest struct {
	PackageIdentifier string `yaml:"PackageIdentifier"`
	PackageVersion    string `yaml:"PackageVersion"`
	PackageName       string `yaml:"PackageName"`
	Publisher         string `yaml:"Publisher"`
	License           string `yaml:"License"`
	ShortDescription  string `yaml:"ShortDescription"`
	Description       string `yaml:"Description"`
	Homepage          string `yaml:"PackageUrl"`
	Moniker           string `yaml:"Moniker"`
	Tags              []any  `yaml:"Tags"`
}

// parseManifest decodes one manifest YAML document. Locale and
// non-installer-root files are filtered out by the caller before this
// is invoked (classify, below).
func parseManifest(data []byte) (model.Record, bool) {
	var m installerManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return model.Record{}, false
	}
	if m.PackageIdentifier == "" || m.PackageVersion == "" {
		return model.Record{}, false
	}

	rec := model.Record{
		PackageID:   m.PackageIdentifier,
		Name:        firstNonEmpty(m.PackageName, m.Moniker, m.PackageIdentifier),
		Version:     m.PackageVersion,
		Manager:     model.ManagerWinget,
		Publisher:   m.Publisher,
		Homepage:    m.Homepage,
		License:     m.License,
		Description: firstNonEmpty(m.Description, m.ShortDescription),
	}

	for _, raw := range m.Tags {
		if s, ok := model.NormalizeVariant(raw); ok {
			rec.Tags = append(rec.Tags, strings.ToLower(s))
		}
	}
	rec.BuildSearchTokens()
	return rec, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// fileKind classifies a manifest path into one of the three roles the
// scan stage recognizes (spec.md §4.3.1 step 1).
type fileKind int

const (
	kindLocale fileKind = iota
	kindInstaller
	kindOther
)

func classify(path string) fileKind {
	if strings.Contains(path, ".locale.") {
		return kindLocale
	}
	if strings.Contains(path, ".installer.") {
		return kindInstaller
	}
	return kindOther
}
