// Package kino scrapes kino.de search and detail pages for video
// collections. The search result list yields partial records; ResolveFull
// loads the film's detail page for the remaining fields.
package kino

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/images"
	"quarto/internal/logging"
)

const sourceName = "kino.de"

var (
	releaseDatePattern = regexp.MustCompile(`\d{2}\.\d{2}\.(\d{4})`)
	yearSuffixPattern  = regexp.MustCompile(`(\d{4})/?$`)
	personSplitPattern = regexp.MustCompile(`\s*(?:,|\sund\s)\s*`)
)

var fskValues = []string{"FSK 0 (DE)", "FSK 6 (DE)", "FSK 12 (DE)", "FSK 16 (DE)", "FSK 18 (DE)"}

var fskNames = map[string]string{
	"ab 0":  "FSK 0 (DE)",
	"ab 6":  "FSK 6 (DE)",
	"ab 12": "FSK 12 (DE)",
	"ab 16": "FSK 16 (DE)",
	"ab 18": "FSK 18 (DE)",
}

// Fetcher scrapes kino.de. The site needs no credentials.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	registrar  images.Registrar
	logger     *slog.Logger

	mu         sync.Mutex
	detailURLs map[string]string
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

// New creates a kino.de fetcher.
func New(baseURL string, registrar images.Registrar, logger *slog.Logger, opts ...Option) *Fetcher {
	if registrar == nil {
		registrar = images.Nop{}
	}
	f := &Fetcher{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		registrar:  registrar,
		logger:     logging.NewComponentLogger(logger, "kino"),
		detailURLs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Source implements fetch.Fetcher.
func (f *Fetcher) Source() string { return sourceName }

// CanSearch implements fetch.Fetcher.
func (f *Fetcher) CanSearch(key fetch.KeyKind) bool { return key == fetch.KeyTitle }

// CanFetch implements fetch.Fetcher.
func (f *Fetcher) CanFetch(typ catalog.Type) bool { return typ == catalog.TypeVideo }

// OptionalFields implements fetch.Fetcher.
func (f *Fetcher) OptionalFields() map[string]string { return nil }

// UpdateRequest implements fetch.Fetcher.
func (f *Fetcher) UpdateRequest(rec *catalog.Record) fetch.Request {
	if title := rec.Field("title"); title != "" {
		return fetch.Request{Key: fetch.KeyTitle, Value: title, Type: catalog.TypeVideo}
	}
	return fetch.Request{}
}

// Search implements fetch.Fetcher.
func (f *Fetcher) Search(ctx context.Context, req fetch.Request, schema *catalog.Schema) ([]*catalog.Record, error) {
	if req.IsEmpty() {
		return nil, nil
	}
	if req.Key != fetch.KeyTitle {
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, fmt.Sprintf("search key %s", req.Key), nil)
	}

	endpoint, err := url.Parse(f.baseURL + "/se/" + url.PathEscape(req.Value) + "/")
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrConfiguration, sourceName, "parse base url", err)
	}
	params := url.Values{}
	params.Set("sp_search_filter", "movie")
	endpoint.RawQuery = params.Encode()

	doc, err := f.getDocument(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}

	var records []*catalog.Record
	var parseErr error
	doc.Find("a.movie-link").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		rec, err := f.populateFromTeaser(schema, link, href)
		if err != nil {
			parseErr = err
			return false
		}
		records = append(records, rec)
		return true
	})
	if parseErr != nil {
		return nil, fetch.Wrap(fetch.ErrParse, sourceName, "parse result list", parseErr)
	}
	return records, nil
}

func (f *Fetcher) populateFromTeaser(schema *catalog.Schema, link *goquery.Selection, href string) (*catalog.Record, error) {
	rec := catalog.NewRecord(schema)
	if err := rec.SetField("title", strings.TrimSpace(link.Text())); err != nil {
		return nil, err
	}

	teaser := link.Closest("article, li, section")
	if teaser.Length() == 0 {
		teaser = link.Parent()
	}

	year := ""
	if m := releaseDatePattern.FindStringSubmatch(teaser.Find("span.movie-startdate").Text()); m != nil {
		year = m[1]
	} else if m := yearSuffixPattern.FindStringSubmatch(href); m != nil {
		// some detail urls end in the production year
		year = m[1]
	}
	if err := setNonEmpty(rec, "year", year); err != nil {
		return nil, err
	}

	if genre := stripLabel(teaser.Find("span.movie-genre").Text(), "Genre:"); genre != "" {
		if err := rec.SetValues("genre", splitPeople(genre)); err != nil {
			return nil, err
		}
	}
	if director := stripLabel(teaser.Find("span.movie-director").Text(), "Von:"); director != "" {
		if err := rec.SetValues("director", splitPeople(director)); err != nil {
			return nil, err
		}
	}
	if cast := stripLabel(teaser.Find("span.movie-cast").Text(), "Mit:"); cast != "" {
		cast = strings.TrimSuffix(cast, " und weiteren")
		if err := rec.SetValues("cast", splitPeople(cast)); err != nil {
			return nil, err
		}
	}

	detail := href
	if base, err := url.Parse(f.baseURL + "/"); err == nil {
		if rel, err := url.Parse(href); err == nil {
			detail = base.ResolveReference(rel).String()
		}
	}
	f.mu.Lock()
	f.detailURLs[rec.ID()] = detail
	f.mu.Unlock()
	return rec, nil
}

// ResolveFull implements fetch.Fetcher. It loads the detail page recorded at
// search time; records already resolved (or from another session) pass
// through unchanged.
func (f *Fetcher) ResolveFull(ctx context.Context, req fetch.Request, rec *catalog.Record) (*catalog.Record, error) {
	if rec == nil {
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, "resolve nil record", nil)
	}
	f.mu.Lock()
	detail, ok := f.detailURLs[rec.ID()]
	f.mu.Unlock()
	if !ok {
		return rec, nil
	}

	doc, err := f.getDocument(ctx, detail)
	if err != nil {
		return nil, err
	}
	if err := f.parseDetail(ctx, rec, doc); err != nil {
		return nil, fetch.Wrap(fetch.ErrParse, sourceName, "parse detail page", err)
	}

	f.mu.Lock()
	delete(f.detailURLs, rec.ID())
	f.mu.Unlock()
	return rec, nil
}

func (f *Fetcher) parseDetail(ctx context.Context, rec *catalog.Record, doc *goquery.Document) error {
	details := map[string]string{}
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		details[strings.TrimSpace(dt.Text())] = strings.TrimSpace(dt.Next().Text())
	})

	if nationality := details["Produktionsland"]; nationality != "" {
		if err := rec.SetField("nationality", nationality); err != nil {
			return err
		}
	}
	if length := details["Dauer"]; length != "" {
		if err := setNonEmpty(rec, "running-time", strings.TrimSuffix(length, " Min")); err != nil {
			return err
		}
	}
	if studio := details["Filmverleih"]; studio != "" {
		if err := rec.SetField("studio", studio); err != nil {
			return err
		}
	}
	if cert, ok := details["FSK"]; ok && cert != "" {
		for _, value := range fskValues {
			rec.Schema().ExtendAllowed("certification", value)
		}
		if mapped, ok := fskNames[cert]; ok {
			cert = mapped
		} else {
			rec.Schema().ExtendAllowed("certification", cert)
		}
		if err := rec.SetField("certification", cert); err != nil {
			return err
		}
	}

	var paragraphs []string
	doc.Find(".movie-plot-teaser").Parent().Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		if err := rec.SetField("plot", strings.Join(paragraphs, "\n\n")); err != nil {
			return err
		}
	}

	if src, ok := doc.Find("div.movie-meta img").Attr("src"); ok && src != "" {
		id := f.registrar.AddImage(ctx, src, true)
		if id == "" {
			f.logger.Warn("cover image could not be loaded", logging.String("url", src))
		}
		// empty image id is acceptable
		if err := rec.SetField("cover", id); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) getDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrTransport, sourceName, "build request", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrTransport, sourceName, "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetch.Wrap(fetch.ErrTransport, sourceName, fmt.Sprintf("request returned %d", resp.StatusCode), nil)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrParse, sourceName, "parse html", err)
	}
	return doc, nil
}

func setNonEmpty(rec *catalog.Record, name, value string) error {
	if value == "" {
		return nil
	}
	return rec.SetField(name, value)
}

func stripLabel(text, label string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, label)
	return strings.TrimSpace(text)
}

func splitPeople(value string) []string {
	parts := personSplitPattern.Split(value, -1)
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}
