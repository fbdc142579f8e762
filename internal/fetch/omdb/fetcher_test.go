package omdb

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

const listBody = `{
  "Search": [
    {"Title": "Blade Runner", "Year": "1982", "imdbID": "tt0083658", "Poster": "https://img.example.test/br.jpg"},
    {"Title": "Blade Runner 2049", "Year": "2017", "imdbID": "tt1856101", "Poster": "N/A"}
  ],
  "totalResults": "2",
  "Response": "True"
}`

const titleBody = `{
  "Title": "Blade Runner",
  "Year": "1982",
  "Rated": "R",
  "Runtime": "117 min",
  "Genre": "Sci-Fi, Thriller",
  "Director": "Ridley Scott",
  "Writer": "Hampton Fancher (screenplay), David Webb Peoples (screenplay)",
  "Actors": "Harrison Ford, Rutger Hauer, Sean Young",
  "Plot": "A blade runner must pursue and terminate four replicants.",
  "Language": "English",
  "Country": "USA, Hong Kong",
  "Poster": "https://img.example.test/br.jpg",
  "Production": "Warner Bros.",
  "imdbID": "tt0083658",
  "Response": "True"
}`

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		switch {
		case q.Get("apikey") == "":
			fmt.Fprint(w, `{"Response": "False", "Error": "No API key provided."}`)
		case q.Get("i") == "tt0083658":
			fmt.Fprint(w, titleBody)
		case q.Get("s") != "":
			fmt.Fprint(w, listBody)
		default:
			fmt.Fprint(w, `{"Response": "False", "Error": "Movie not found!"}`)
		}
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestSearchReturnsPartialRecords(t *testing.T) {
	server, _ := newTestServer(t)
	f := New("test-key", server.URL, images.Nop{}, logging.NewNop())
	schema := catalog.VideoSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyTitle, Value: "blade runner", Type: catalog.TypeVideo,
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	rec := records[0]
	if got := rec.Field("title"); got != "Blade Runner" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := rec.Field("year"); got != "1982" {
		t.Fatalf("unexpected year: %q", got)
	}
	if got := rec.Field("imdb"); got != "https://www.imdb.com/title/tt0083658/" {
		t.Fatalf("unexpected imdb link: %q", got)
	}
	// the list endpoint has no director data
	if got := rec.Field("director"); got != "" {
		t.Fatalf("expected partial record, got director %q", got)
	}
}

func TestResolveFullFetchesTitleData(t *testing.T) {
	server, _ := newTestServer(t)
	registrar := images.NewMemory()
	f := New("test-key", server.URL, registrar, logging.NewNop())
	schema := catalog.VideoSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyTitle, Value: "blade runner", Type: catalog.TypeVideo,
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	rec, err := f.ResolveFull(context.Background(), fetch.Request{Type: catalog.TypeVideo}, records[0])
	if err != nil {
		t.Fatalf("ResolveFull failed: %v", err)
	}
	if got := rec.Field("director"); got != "Ridley Scott" {
		t.Fatalf("unexpected director: %q", got)
	}
	if got := rec.Field("writer"); got != "Hampton Fancher; David Webb Peoples" {
		t.Fatalf("unexpected writer: %q", got)
	}
	if got := rec.Field("cast"); got != "Harrison Ford; Rutger Hauer; Sean Young" {
		t.Fatalf("unexpected cast: %q", got)
	}
	if got := rec.Field("running-time"); got != "117" {
		t.Fatalf("unexpected running time: %q", got)
	}
	if got := rec.Field("certification"); got != "R (USA)" {
		t.Fatalf("unexpected certification: %q", got)
	}
	if got := rec.Field("nationality"); got != "USA; Hong Kong" {
		t.Fatalf("unexpected nationality: %q", got)
	}
	if got := rec.Field("studio"); got != "Warner Bros." {
		t.Fatalf("unexpected studio: %q", got)
	}
	if got := rec.Field("cover"); !strings.HasPrefix(got, "mem-") {
		t.Fatalf("expected registered cover id, got %q", got)
	}
	if urls := registrar.URLs(); len(urls) != 1 {
		t.Fatalf("expected one registered image, got %v", urls)
	}
}

func TestSearchByIdentifierReturnsFullRecord(t *testing.T) {
	server, _ := newTestServer(t)
	f := New("test-key", server.URL, images.Nop{}, logging.NewNop())
	schema := catalog.VideoSchema()

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyIdentifier, Value: "https://www.imdb.com/title/tt0083658/", Type: catalog.TypeVideo,
	}, schema)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if got := records[0].Field("director"); got != "Ridley Scott" {
		t.Fatalf("identifier search should return full data, got director %q", got)
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	server, hits := newTestServer(t)
	f := New("", server.URL, images.Nop{}, logging.NewNop())

	_, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyTitle, Value: "blade runner", Type: catalog.TypeVideo,
	}, catalog.VideoSchema())
	if !errors.Is(err, fetch.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no network calls without a key, got %d", hits.Load())
	}
}

func TestSearchRejectsNonIMDbIdentifier(t *testing.T) {
	server, _ := newTestServer(t)
	f := New("test-key", server.URL, images.Nop{}, logging.NewNop())

	records, err := f.Search(context.Background(), fetch.Request{
		Key: fetch.KeyIdentifier, Value: "no-id-here", Type: catalog.TypeVideo,
	}, catalog.VideoSchema())
	if err == nil || !errors.Is(err, fetch.ErrUnsupported) {
		t.Fatalf("expected unsupported identifier error, got %v (%d records)", err, len(records))
	}
}

func TestUpdateRequestPrefersIMDbID(t *testing.T) {
	f := New("test-key", "https://example.test", images.Nop{}, logging.NewNop())
	schema := catalog.VideoSchema()

	rec := catalog.NewRecord(schema)
	if err := rec.SetField("title", "Blade Runner"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if err := rec.SetField("imdb", "https://www.imdb.com/title/tt0083658/"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	req := f.UpdateRequest(rec)
	if req.Key != fetch.KeyIdentifier || req.Value != "tt0083658" {
		t.Fatalf("expected identifier request, got %v %q", req.Key, req.Value)
	}

	rec.ClearField("imdb")
	req = f.UpdateRequest(rec)
	if req.Key != fetch.KeyTitle || req.Value != "Blade Runner" {
		t.Fatalf("expected title request, got %v %q", req.Key, req.Value)
	}
}
