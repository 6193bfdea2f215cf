package chocolatey

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/winpacman/core/internal/httpclient"
)

const totalEntries = 10676
const pageSize = 40

// newPaginatingServer emulates the OData feed's pagination handoff: the
// first pages are addressed by $skip, and once skip would reach 10,000
// the server's own next-link switches to an opaque $skiptoken instead,
// exactly as spec.md §4.3.2/§8 describes. A request carrying $skip>=10000
// (which a correct client never sends, since it only ever follows the
// server-supplied link) is rejected with 406.
func newPaginatingServer(t *testing.T) *httptest.Server {
	t.Helper()
	var mux http.ServeMux
	var baseURL string

	mux.HandleFunc("/Packages", func(w http.ResponseWriter, r *http.Request) {
		skipStr := r.URL.Query().Get("$skip")
		tokenStr := r.URL.Query().Get("$skiptoken")

		var offset int
		switch {
		case tokenStr != "":
			offset, _ = strconv.Atoi(tokenStr)
		case skipStr != "":
			offset, _ = strconv.Atoi(skipStr)
			if offset >= 10000 {
				w.WriteHeader(http.StatusNotAcceptable)
				return
			}
		default:
			offset = 0
		}

		end := offset + pageSize
		if end > totalEntries {
			end = totalEntries
		}

		var entries string
		for i := offset; i < end; i++ {
			entries += fmt.Sprintf(`<entry><properties><Id>pkg-%d</Id><Title>Package %d</Title><Version>1.0.0</Version></properties></entry>`, i, i)
		}

		var nextLink string
		if end < totalEntries {
			if end < 10000 {
				nextLink = fmt.Sprintf(`<link rel="next" href="%s/Packages?$skip=%d"/>`, baseURL, end)
			} else {
				nextLink = fmt.Sprintf(`<link rel="next" href="%s/Packages?$skiptoken=%d"/>`, baseURL, end)
			}
		}

		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprintf(w, `<feed>%s%s</feed>`, nextLink, entries)
	})

	srv := httptest.NewServer(&mux)
	baseURL = srv.URL
	return srv
}

func TestFetchAllHonorsSkipToSkiptokenHandoff(t *testing.T) {
	srv := newPaginatingServer(t)
	defer srv.Close()

	origBase := feedBaseOverride
	feedBaseOverride = srv.URL + "/Packages"
	defer func() { feedBaseOverride = origBase }()

	client := httpclient.New(0)
	p := New(client)

	out, errc := p.FetchAll(context.Background())
	var count int
	for range out {
		count++
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != totalEntries {
		t.Fatalf("expected %d entries, got %d", totalEntries, count)
	}
}

func TestFetchAllFindsPythonEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, `<feed><entry><properties><Id>python</Id><Title>Python</Title><Version>3.12.1</Version></properties></entry></feed>`)
	}))
	defer srv.Close()

	origBase := feedBaseOverride
	feedBaseOverride = srv.URL
	defer func() { feedBaseOverride = origBase }()

	p := New(httpclient.New(0))
	out, errc := p.FetchAll(context.Background())
	var found bool
	for rec := range out {
		if rec.PackageID == "python" {
			found = true
		}
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected to find the python entry")
	}
}
