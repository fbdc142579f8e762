package igdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/images"
	"quarto/internal/logging"
)

const searchBody = `[
  {
    "name": "Half-Life 2",
    "summary": "A first-person shooter.",
    "url": "https://www.igdb.com/games/half-life-2",
    "publishers": [10, 11],
    "developers": [10],
    "genres": [5, 31],
    "cover": {"url": "//images.example.test/covers/hl2.jpg"},
    "esrb": {"rating": 6},
    "pegi": {"rating": 4},
    "release_dates": [{"y": 2004, "platform": 6}]
  },
  {
    "name": "Mario Kart World",
    "publishers": [70],
    "release_dates": [{"y": 2025, "platform": 508}]
  }
]`

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("X-Mashape-Key") == "" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/games/"):
			fmt.Fprint(w, searchBody)
		case strings.HasPrefix(r.URL.Path, "/companies/10"):
			fmt.Fprint(w, `[{"name": "Valve"}]`)
		case strings.HasPrefix(r.URL.Path, "/companies/11"):
			fmt.Fprint(w, `[{"name": "Sierra"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestSearchPopulatesRecords(t *testing.T) {
	server, _ := newTestServer(t)
	f := New("test-key", server.URL, images.Nop{}, logging.NewNop())
	schema := catalog.GameSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyKeyword, Value: "half-life", Type: catalog.TypeGame,
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	rec := records[0]
	if got := rec.Field("title"); got != "Half-Life 2" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := rec.Field("genre"); got != "Shooter; Adventure" {
		t.Fatalf("unexpected genre: %q", got)
	}
	if got := rec.Field("certification"); got != "Mature" {
		t.Fatalf("unexpected certification: %q", got)
	}
	if got := rec.Field("platform"); got != "Windows" {
		t.Fatalf("expected renamed platform, got %q", got)
	}
	if got := rec.Field("year"); got != "2004" {
		t.Fatalf("unexpected year: %q", got)
	}
	if got := rec.Field("pub-id"); got != "10; 11" {
		t.Fatalf("unexpected pub-id: %q", got)
	}
	if got := rec.Field("cover"); got != "https://images.example.test/covers/hl2.jpg" {
		t.Fatalf("unexpected cover url: %q", got)
	}
	if got := rec.Field("pegi"); got != "" {
		t.Fatalf("pegi should be empty unless requested, got %q", got)
	}
}

func TestSearchExtendsPlatformChoices(t *testing.T) {
	server, _ := newTestServer(t)
	f := New("test-key", server.URL, images.Nop{}, logging.NewNop())
	schema := catalog.GameSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyKeyword, Value: "mario kart", Type: catalog.TypeGame,
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got := records[1].Field("platform"); got != "Nintendo Switch 2" {
		t.Fatalf("unexpected platform: %q", got)
	}
	var found bool
	for _, allowed := range schema.Allowed("platform") {
		if allowed == "Nintendo Switch 2" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected platform allowed list to be extended")
	}
}

func TestSearchOptionalFields(t *testing.T) {
	server, _ := newTestServer(t)
	f := New("test-key", server.URL, images.Nop{}, logging.NewNop())
	schema := catalog.GameSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyKeyword, Value: "half-life", Type: catalog.TypeGame,
		OptionalFields: []string{"pegi", "igdb"},
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	rec := records[0]
	if got := rec.Field("pegi"); got != "PEGI 16" {
		t.Fatalf("unexpected pegi rating: %q", got)
	}
	if got := rec.Field("igdb"); got != "https://www.igdb.com/games/half-life-2" {
		t.Fatalf("unexpected igdb link: %q", got)
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	server, hits := newTestServer(t)
	f := New("", server.URL, images.Nop{}, logging.NewNop())

	_, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyKeyword, Value: "half-life", Type: catalog.TypeGame,
	}, catalog.GameSchema())
	if !errors.Is(err, fetch.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no network calls without a key, got %d", hits.Load())
	}
}

func TestResolveFullCompletesRecord(t *testing.T) {
	server, hits := newTestServer(t)
	registrar := images.NewMemory()
	f := New("test-key", server.URL, registrar, logging.NewNop())
	schema := catalog.GameSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyKeyword, Value: "half-life", Type: catalog.TypeGame,
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	resolved, err := f.ResolveFull(context.Background(), fetch.Request{Type: catalog.TypeGame}, records[0])
	if err != nil {
		t.Fatalf("ResolveFull failed: %v", err)
	}
	if got := resolved.Field("publisher"); got != "Valve; Sierra" {
		t.Fatalf("unexpected publisher: %q", got)
	}
	if got := resolved.Field("developer"); got != "Valve" {
		t.Fatalf("unexpected developer: %q", got)
	}
	if got := resolved.Field("pub-id"); got != "" {
		t.Fatalf("pub-id should be cleared, got %q", got)
	}
	if got := resolved.Field("dev-id"); got != "" {
		t.Fatalf("dev-id should be cleared, got %q", got)
	}
	if got := resolved.Field("cover"); !strings.HasPrefix(got, "mem-") {
		t.Fatalf("cover should hold a registered image id, got %q", got)
	}
	if urls := registrar.URLs(); len(urls) != 1 || !strings.Contains(urls[0], "hl2.jpg") {
		t.Fatalf("unexpected registered urls: %v", urls)
	}

	// company 10 appears as both publisher and developer; the cache keeps it
	// to a single lookup
	wantHits := int64(1 + 2) // search plus companies 10 and 11
	if hits.Load() != wantHits {
		t.Fatalf("expected %d requests, got %d", wantHits, hits.Load())
	}
}
