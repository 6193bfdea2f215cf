package npm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/winpacman/core/internal/httpclient"
)

func TestFetchAllDedupesAcrossKeywords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"objects":[{"package":{"name":"react","version":"18.0.0"}}]}`)
	}))
	defer srv.Close()

	origSearch := searchURLOverride
	searchURLOverride = srv.URL
	defer func() { searchURLOverride = origSearch }()

	p := New(httpclient.New(0), []string{"react", "frontend"})
	out, errc := p.FetchAll(context.Background())
	var count int
	for range out {
		count++
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected dedup to one record across two keywords, got %d", count)
	}
}
