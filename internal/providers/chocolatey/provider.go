package chocolatey

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/winpacman/core/internal/httpclient"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

// defaultStaleAfter is Chocolatey's freshness budget (spec.md §4.5),
// overridable via SetStaleAfter from config.Settings.
const defaultStaleAfter = 7 * 24 * time.Hour

// rateLimitRPS is the ≤10 req/s ceiling spec.md §4.3.2 requires.
const rateLimitRPS = 10

// host is the fixed upstream this provider's rate limit is scoped to.
const host = "community.chocolatey.org"

// Provider fetches the Chocolatey community feed.
type Provider struct {
	client     *httpclient.Client
	staleAfter time.Duration
}

func New(client *httpclient.Client) *Provider {
	client.SetHostLimit(host, rateLimitRPS)
	return &Provider{client: client, staleAfter: defaultStaleAfter}
}

func (p *Provider) Name() model.Manager { return model.ManagerChocolatey }

// SetStaleAfter overrides the freshness budget; see winget.Provider's
// method of the same name for why this exists.
func (p *Provider) SetStaleAfter(d time.Duration) { p.staleAfter = d }

func (p *Provider) IsStale(lastSync time.Time) bool {
	return lastSync.IsZero() || time.Since(lastSync) > p.staleAfter
}

// FetchAll follows the Atom feed's own <link rel="next"> chain page by
// page, never constructing a $skip URL itself past the first request —
// this is what lets the 406-at-$skip>=10000 boundary (spec.md §8) fall
// out for free: whatever pagination strategy the server's next link
// encodes (offset or cursor-based skiptoken) is simply honored.
func (p *Provider) FetchAll(ctx context.Context) (<-chan model.Record, <-chan error) {
	out := make(chan model.Record, 128)
	errc := make(chan error, 1)
	log := logging.Component("chocolatey")

	go func() {
		defer close(out)
		defer close(errc)

		url := firstURL()
		var total, malformed int
		for url != "" {
			select {
			case <-ctx.Done():
				return
			default:
			}

			body, err := p.client.Get(ctx, url)
			if err != nil {
				errc <- err
				return
			}

			var feed atomFeed
			if err := xml.Unmarshal(body, &feed); err != nil {
				errc <- err
				return
			}

			for _, e := range feed.Entries {
				rec, ok := toRecord(e.Properties)
				if !ok {
					malformed++
					continue
				}
				total++
				select {
				case <-ctx.Done():
					return
				case out <- rec:
				}
			}

			next, ok := feed.nextLink()
			if !ok {
				break
			}
			url = next
		}

		if malformed > 0 {
			log.Warn("skipped malformed chocolatey entries", "count", malformed)
		}
		log.Info("chocolatey sync complete", "package_count", total)
	}()

	return out, errc
}

func (p *Provider) FetchOne(ctx context.Context, packageID string) (model.Record, bool, error) {
	url := feedBaseOverride + `(Id='` + packageID + `')`
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return model.Record{}, false, err
	}
	var entry atomEntry
	if err := xml.Unmarshal(body, &entry); err != nil {
		return model.Record{}, false, nil
	}
	rec, ok := toRecord(entry.Properties)
	return rec, ok, nil
}

func toRecord(props atomProperties) (model.Record, bool) {
	if props.ID == "" || props.Version == "" {
		return model.Record{}, false
	}
	rec := model.Record{
		PackageID:   props.ID,
		Name:        firstNonEmpty(props.Title, props.ID),
		Version:     props.Version,
		Manager:     model.ManagerChocolatey,
		Description: props.Description,
		Publisher:   props.Authors,
		Homepage:    props.ProjectURL,
		License:     props.LicenseURL,
		LastSeenAt:  time.Now(),
	}
	for _, t := range strings.Fields(props.Tags) {
		rec.Tags = append(rec.Tags, strings.ToLower(t))
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
