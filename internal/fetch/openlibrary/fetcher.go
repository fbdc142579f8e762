// Package openlibrary searches the Open Library API for book collections.
// The source is keyless. Search returns near-complete records; ResolveFull
// registers the cover image.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/images"
	"quarto/internal/logging"
	"quarto/internal/textutil"
)

const (
	sourceName = "Open Library"
	maxReturns = 20
)

type searchPayload struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		Subtitle         string   `json:"subtitle"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Publisher        []string `json:"publisher"`
		ISBN             []string `json:"isbn"`
		Language         []string `json:"language"`
		MedianPages      int      `json:"number_of_pages_median"`
		CoverID          int64    `json:"cover_i"`
	} `json:"docs"`
}

// Fetcher searches Open Library.
type Fetcher struct {
	baseURL    string
	coversURL  string
	httpClient *http.Client
	registrar  images.Registrar
	logger     *slog.Logger
}

var _ fetch.Fetcher = (*Fetcher)(nil)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithCoversURL overrides the cover image host.
func WithCoversURL(coversURL string) Option {
	return func(f *Fetcher) {
		if coversURL = strings.TrimSpace(coversURL); coversURL != "" {
			f.coversURL = strings.TrimRight(coversURL, "/")
		}
	}
}

// New creates an Open Library fetcher.
func New(baseURL string, registrar images.Registrar, logger *slog.Logger, opts ...Option) *Fetcher {
	if registrar == nil {
		registrar = images.Nop{}
	}
	f := &Fetcher{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		coversURL:  "https://covers.openlibrary.org",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		registrar:  registrar,
		logger:     logging.NewComponentLogger(logger, "openlibrary"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Source implements fetch.Fetcher.
func (f *Fetcher) Source() string { return sourceName }

// CanSearch implements fetch.Fetcher.
func (f *Fetcher) CanSearch(key fetch.KeyKind) bool {
	return key == fetch.KeyTitle || key == fetch.KeyPerson || key == fetch.KeyIdentifier
}

// CanFetch implements fetch.Fetcher.
func (f *Fetcher) CanFetch(typ catalog.Type) bool { return typ == catalog.TypeBook }

// OptionalFields implements fetch.Fetcher.
func (f *Fetcher) OptionalFields() map[string]string {
	return map[string]string{"openlibrary": "Open Library Link"}
}

// UpdateRequest implements fetch.Fetcher.
func (f *Fetcher) UpdateRequest(rec *catalog.Record) fetch.Request {
	if isbn := rec.Field("isbn"); isbn != "" {
		return fetch.Request{Key: fetch.KeyIdentifier, Value: isbn, Type: catalog.TypeBook}
	}
	if title := rec.Field("title"); title != "" {
		return fetch.Request{Key: fetch.KeyTitle, Value: title, Type: catalog.TypeBook}
	}
	return fetch.Request{}
}

// Search implements fetch.Fetcher.
func (f *Fetcher) Search(ctx context.Context, req fetch.Request, schema *catalog.Schema) ([]*catalog.Record, error) {
	if req.IsEmpty() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(maxReturns))
	switch req.Key {
	case fetch.KeyTitle:
		params.Set("title", req.Value)
	case fetch.KeyPerson:
		params.Set("author", req.Value)
	case fetch.KeyIdentifier:
		isbn := textutil.FoldIdentifier(req.Value)
		if isbn == "" {
			return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, fmt.Sprintf("identifier %q is not an ISBN", req.Value), nil)
		}
		params.Set("isbn", isbn)
	default:
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, fmt.Sprintf("search key %s", req.Key), nil)
	}

	endpoint, err := url.Parse(f.baseURL + "/search.json")
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrConfiguration, sourceName, "parse base url", err)
	}
	endpoint.RawQuery = params.Encode()

	var payload searchPayload
	if err := f.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	if req.WantsOptional("openlibrary") && !schema.HasField("openlibrary") {
		if err := schema.AddField(catalog.Field{
			Name: "openlibrary", Title: "Open Library Link", Category: "General", Kind: catalog.KindURL,
		}); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "extend schema", err)
		}
	}

	records := make([]*catalog.Record, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		rec := catalog.NewRecord(schema)
		fields := map[string]string{
			"title":    doc.Title,
			"subtitle": doc.Subtitle,
			"author":   catalog.JoinValues(doc.AuthorName),
			"isbn":     firstISBN(doc.ISBN),
			"language": catalog.JoinValues(doc.Language),
		}
		if doc.FirstPublishYear > 0 {
			fields["pub_year"] = strconv.Itoa(doc.FirstPublishYear)
		}
		if len(doc.Publisher) > 0 {
			fields["publisher"] = doc.Publisher[0]
		}
		if doc.MedianPages > 0 {
			fields["pages"] = strconv.Itoa(doc.MedianPages)
		}
		if doc.CoverID > 0 {
			fields["cover"] = fmt.Sprintf("%s/b/id/%d-L.jpg", f.coversURL, doc.CoverID)
		}
		if req.WantsOptional("openlibrary") && doc.Key != "" {
			fields["openlibrary"] = f.baseURL + doc.Key
		}
		for name, value := range fields {
			if value == "" {
				continue
			}
			if err := rec.SetField(name, value); err != nil {
				return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ResolveFull implements fetch.Fetcher. Search already returns the full
// data; only the cover image still needs registering.
func (f *Fetcher) ResolveFull(ctx context.Context, req fetch.Request, rec *catalog.Record) (*catalog.Record, error) {
	if rec == nil {
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, "resolve nil record", nil)
	}
	if cover := rec.Field("cover"); strings.Contains(cover, "/") {
		id := f.registrar.AddImage(ctx, cover, true)
		if err := rec.SetField("cover", id); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "set cover", err)
		}
	}
	return rec, nil
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fetch.Wrap(fetch.ErrTransport, sourceName, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fetch.Wrap(fetch.ErrTransport, sourceName, "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fetch.Wrap(fetch.ErrTransport, sourceName, fmt.Sprintf("request returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fetch.Wrap(fetch.ErrParse, sourceName, "decode response", err)
	}
	return nil
}

// firstISBN prefers a 13-digit ISBN when one is listed.
func firstISBN(isbns []string) string {
	var fallback string
	for _, isbn := range isbns {
		folded := textutil.FoldIdentifier(isbn)
		if len(folded) == 13 {
			return isbn
		}
		if fallback == "" && folded != "" {
			fallback = isbn
		}
	}
	return fallback
}
