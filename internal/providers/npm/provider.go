// Package npm is the lazy NPM provider (spec.md §4.3.4): a bounded
// "popular" set by keyword search, with on-demand per-package detail
// fetch. The catalog is never mirrored.
package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/winpacman/core/internal/httpclient"
	"github.com/winpacman/core/internal/model"
)

const (
	searchURL = "https://registry.npmjs.org/-/v1/search"
	detailURL = "https://registry.npmjs.org"
	pageSize  = 250
)

// searchURLOverride/detailURLOverride let tests point at a local mock
// server instead of the real npm registry.
var (
	searchURLOverride = searchURL
	detailURLOverride = detailURL
)

// Provider fetches a keyword-seeded popular set plus on-demand detail.
// IsStale always reports true: NPM is "on demand only" per spec.md §4.5
// and never auto-refreshes.
type Provider struct {
	client   *httpclient.Client
	keywords []string
}

func New(client *httpclient.Client, keywords []string) *Provider {
	return &Provider{client: client, keywords: keywords}
}

func (p *Provider) Name() model.Manager    { return model.ManagerNPM }
func (p *Provider) IsStale(time.Time) bool { return true }

type searchPackageLinks struct {
	Homepage string `json:"homepage"`
}

type searchPackageAuthor struct {
	Name string `json:"name"`
}

type searchPackage struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Links       searchPackageLinks  `json:"links"`
	Author      searchPackageAuthor `json:"author"`
	License     string              `json:"license"`
	Keywords    []string            `json:"keywords"`
}

type searchResponse struct {
	Objects []struct {
		Package searchPackage `json:"package"`
	} `json:"objects"`
}

// FetchAll issues one keyword search per configured keyword and yields
// the bounded (~1,000 record) popular set, deduped by package name.
func (p *Provider) FetchAll(ctx context.Context) (<-chan model.Record, <-chan error) {
	out := make(chan model.Record, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		seen := make(map[string]bool)
		for _, kw := range p.keywords {
			select {
			case <-ctx.Done():
				return
			default:
			}

			u := fmt.Sprintf("%s?text=%s&size=%d", searchURLOverride, url.QueryEscape(kw), pageSize)
			body, err := p.client.Get(ctx, u)
			if err != nil {
				errc <- err
				return
			}

			var resp searchResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				continue
			}
			for _, obj := range resp.Objects {
				if seen[obj.Package.Name] {
					continue
				}
				seen[obj.Package.Name] = true

				rec := model.Record{
					PackageID:   obj.Package.Name,
					Name:        obj.Package.Name,
					Version:     obj.Package.Version,
					Manager:     model.ManagerNPM,
					Description: obj.Package.Description,
					Homepage:    obj.Package.Links.Homepage,
					Publisher:   obj.Package.Author.Name,
					License:     obj.Package.License,
					Tags:        obj.Package.Keywords,
					LastSeenAt:  time.Now(),
				}
				rec.BuildSearchTokens()

				select {
				case <-ctx.Done():
					return
				case out <- rec:
				}
			}
		}
	}()

	return out, errc
}

type packageDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	License     string `json:"license"`
	Homepage    string `json:"homepage"`
	DistTags    struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
}

// FetchOne hits registry.npmjs.org/<name> directly for detail
// enrichment, per spec.md §4.3.4/§6.
func (p *Provider) FetchOne(ctx context.Context, packageID string) (model.Record, bool, error) {
	body, err := p.client.Get(ctx, detailURLOverride+"/"+url.PathEscape(packageID))
	if err != nil {
		return model.Record{}, false, err
	}
	var doc packageDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.Record{}, false, nil
	}
	if doc.Name == "" {
		return model.Record{}, false, nil
	}
	rec := model.Record{
		PackageID:   doc.Name,
		Name:        doc.Name,
		Version:     doc.DistTags.Latest,
		Manager:     model.ManagerNPM,
		Description: doc.Description,
		Homepage:    doc.Homepage,
		License:     doc.License,
		LastSeenAt:  time.Now(),
	}
	rec.BuildSearchTokens()
	return rec, true, nil
}
