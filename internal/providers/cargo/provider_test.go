package cargo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/winpacman/core/internal/httpclient"
)

func TestIndexPathPrefixRules(t *testing.T) {
	cases := map[string]string{
		"a":     "1/a",
		"ab":    "2/ab",
		"abc":   "3/a/abc",
		"serde": "se/rd/serde",
	}
	for crate, want := range cases {
		if got := indexPath(crate); got != want {
			t.Errorf("indexPath(%q) = %q, want %q", crate, got, want)
		}
	}
}

func TestFetchOneSkipsYankedVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{\"name\":\"serde\",\"vers\":\"1.0.0\",\"yanked\":false}\n"+
			"{\"name\":\"serde\",\"vers\":\"1.0.1\",\"yanked\":true}\n")
	}))
	defer srv.Close()

	orig := indexBaseOverride
	indexBaseOverride = srv.URL
	defer func() { indexBaseOverride = orig }()

	p := New(httpclient.New(0), nil)
	rec, ok, err := p.FetchOne(context.Background(), "serde")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a record")
	}
	if rec.Version != "1.0.0" {
		t.Fatalf("expected the non-yanked version 1.0.0, got %s", rec.Version)
	}
}
