package cargo

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/winpacman/core/internal/httpclient"
	"github.com/winpacman/core/internal/model"
)

const (
	indexBase  = "https://index.crates.io"
	searchBase = "https://crates.io/api/v1/crates"
)

// indexBaseOverride/searchBaseOverride let tests point at a local mock
// server instead of the real crates.io infrastructure.
var (
	indexBaseOverride  = indexBase
	searchBaseOverride = searchBase
)

// Provider fetches crates via the sparse index and crates.io search API.
// IsStale always reports true: Cargo is "on demand only" per spec.md §4.5.
type Provider struct {
	client   *httpclient.Client
	keywords []string
}

func New(client *httpclient.Client, keywords []string) *Provider {
	return &Provider{client: client, keywords: keywords}
}

func (p *Provider) Name() model.Manager    { return model.ManagerCargo }
func (p *Provider) IsStale(time.Time) bool { return true }

type searchResponse struct {
	Crates []struct {
		Name        string `json:"name"`
		MaxVersion  string `json:"max_version"`
		Description string `json:"description"`
		Homepage    string `json:"homepage"`
		Repository  string `json:"repository"`
		Keywords    []string
	} `json:"crates"`
}

// FetchAll bulk-fetches the popular set via the crates.io search API
// (spec.md §4.3.5), one page per configured keyword, deduped by name.
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

			u := fmt.Sprintf("%s?q=%s&per_page=100", searchBaseOverride, url.QueryEscape(kw))
			body, err := p.client.Get(ctx, u)
			if err != nil {
				errc <- err
				return
			}

			var resp searchResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				continue
			}
			for _, c := range resp.Crates {
				if seen[c.Name] {
					continue
				}
				seen[c.Name] = true

				rec := model.Record{
					PackageID:   c.Name,
					Name:        c.Name,
					Version:     c.MaxVersion,
					Manager:     model.ManagerCargo,
					Description: c.Description,
					Homepage:    c.Homepage,
					Tags:        c.Keywords,
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

// FetchOne reads a crate's sparse-index file and returns the highest
// non-yanked version as the canonical record (spec.md §4.3.5).
func (p *Provider) FetchOne(ctx context.Context, crateName string) (model.Record, bool, error) {
	body, err := p.client.Get(ctx, indexBaseOverride+"/"+indexPath(crateName))
	if err != nil {
		return model.Record{}, false, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	var best indexLine
	found := false
	for scanner.Scan() {
		var line indexLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Yanked {
			continue
		}
		if !found || versionGreater(line.Vers, best.Vers) {
			best = line
			found = true
		}
	}
	if !found {
		return model.Record{}, false, nil
	}

	rec := model.Record{
		PackageID:  best.Name,
		Name:       best.Name,
		Version:    best.Vers,
		Manager:    model.ManagerCargo,
		License:    best.License,
		Homepage:   best.Links,
		LastSeenAt: time.Now(),
	}
	rec.BuildSearchTokens()
	return rec, true, nil
}

func versionGreater(a, b string) bool {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	if errA == nil && errB == nil {
		return va.GreaterThan(vb)
	}
	return a > b
}
