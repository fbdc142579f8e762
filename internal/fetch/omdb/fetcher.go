// Package omdb searches the OMDb API for video collections. Search returns
// partial records from the list endpoint; ResolveFull issues a second
// request for the full title data.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/images"
	"quarto/internal/logging"
)

const sourceName = "OMDb"

var imdbIDPattern = regexp.MustCompile(`tt\d+`)

type searchPayload struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDBID string `json:"imdbID"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type titlePayload struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Poster     string `json:"Poster"`
	Production string `json:"Production"`
	IMDBID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Fetcher searches the OMDb API. An API key is required; searches without
// one fail fast before any network call.
type Fetcher struct {
	apiKey     string
	baseURL    string
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

// New creates an OMDb fetcher.
func New(apiKey, baseURL string, registrar images.Registrar, logger *slog.Logger, opts ...Option) *Fetcher {
	if registrar == nil {
		registrar = images.Nop{}
	}
	f := &Fetcher{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		registrar:  registrar,
		logger:     logging.NewComponentLogger(logger, "omdb"),
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
	return key == fetch.KeyTitle || key == fetch.KeyIdentifier
}

// CanFetch implements fetch.Fetcher.
func (f *Fetcher) CanFetch(typ catalog.Type) bool { return typ == catalog.TypeVideo }

// OptionalFields implements fetch.Fetcher.
func (f *Fetcher) OptionalFields() map[string]string { return nil }

// UpdateRequest implements fetch.Fetcher.
func (f *Fetcher) UpdateRequest(rec *catalog.Record) fetch.Request {
	if link := rec.Field("imdb"); link != "" {
		if id := imdbIDPattern.FindString(link); id != "" {
			return fetch.Request{Key: fetch.KeyIdentifier, Value: id, Type: catalog.TypeVideo}
		}
	}
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
	if f.apiKey == "" {
		return nil, fetch.Wrap(fetch.ErrConfiguration, sourceName, "an access key is required to use this data source", nil)
	}

	params := url.Values{}
	params.Set("apikey", f.apiKey)
	params.Set("type", "movie")
	switch req.Key {
	case fetch.KeyTitle:
		params.Set("s", req.Value)
	case fetch.KeyIdentifier:
		id := imdbIDPattern.FindString(req.Value)
		if id == "" {
			return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, fmt.Sprintf("identifier %q is not an IMDb id", req.Value), nil)
		}
		// identifier search resolves directly to full data
		full, err := f.fetchTitle(ctx, url.Values{"i": {id}, "plot": {"full"}})
		if err != nil {
			return nil, err
		}
		rec, err := f.populateFull(ctx, schema, full)
		if err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
		}
		return []*catalog.Record{rec}, nil
	default:
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, fmt.Sprintf("search key %s", req.Key), nil)
	}

	endpoint, err := url.Parse(f.baseURL + "/")
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrConfiguration, sourceName, "parse base url", err)
	}
	endpoint.RawQuery = params.Encode()

	var payload searchPayload
	if err := f.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	// OMDb reports "Movie not found!" through the error field; that is an
	// empty result, not a failure
	if payload.Response != "True" {
		return nil, nil
	}

	records := make([]*catalog.Record, 0, len(payload.Search))
	for _, hit := range payload.Search {
		rec := catalog.NewRecord(schema)
		if err := setNonEmpty(rec, "title", hit.Title); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
		}
		if err := setNonEmpty(rec, "year", firstYear(hit.Year)); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
		}
		if err := setNonEmpty(rec, "imdb", imdbLink(hit.IMDBID)); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ResolveFull implements fetch.Fetcher.
func (f *Fetcher) ResolveFull(ctx context.Context, req fetch.Request, rec *catalog.Record) (*catalog.Record, error) {
	if rec == nil {
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, "resolve nil record", nil)
	}
	id := imdbIDPattern.FindString(rec.Field("imdb"))
	if id == "" {
		// nothing to resolve against; return the partial record unchanged
		return rec, nil
	}
	full, err := f.fetchTitle(ctx, url.Values{"i": {id}, "plot": {"full"}})
	if err != nil {
		return nil, err
	}
	return f.populateFullInto(ctx, rec, full)
}

func (f *Fetcher) fetchTitle(ctx context.Context, params url.Values) (*titlePayload, error) {
	params.Set("apikey", f.apiKey)
	endpoint, err := url.Parse(f.baseURL + "/")
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrConfiguration, sourceName, "parse base url", err)
	}
	endpoint.RawQuery = params.Encode()

	var payload titlePayload
	if err := f.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	if payload.Response != "True" {
		return nil, fetch.Wrap(fetch.ErrParse, sourceName, "title lookup", fmt.Errorf("%s", payload.Error))
	}
	return &payload, nil
}

func (f *Fetcher) populateFull(ctx context.Context, schema *catalog.Schema, data *titlePayload) (*catalog.Record, error) {
	return f.populateFullInto(ctx, catalog.NewRecord(schema), data)
}

func (f *Fetcher) populateFullInto(ctx context.Context, rec *catalog.Record, data *titlePayload) (*catalog.Record, error) {
	fields := map[string]string{
		"title":        data.Title,
		"year":         firstYear(data.Year),
		"genre":        splitList(data.Genre),
		"director":     splitList(data.Director),
		"writer":       splitWriters(data.Writer),
		"cast":         splitList(data.Actors),
		"nationality":  splitList(data.Country),
		"running-time": runtimeMinutes(data.Runtime),
		"plot":         data.Plot,
		"studio":       cleanValue(data.Production),
		"imdb":         imdbLink(data.IMDBID),
	}
	for name, value := range fields {
		if err := setNonEmpty(rec, name, value); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
		}
	}

	if cert := certification(data.Rated); cert != "" {
		rec.Schema().ExtendAllowed("certification", cert)
		if err := rec.SetField("certification", cert); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "set certification", err)
		}
	}

	if poster := cleanValue(data.Poster); poster != "" {
		// quiet registration: a missing poster is not worth a user message
		if id := f.registrar.AddImage(ctx, poster, true); id != "" {
			if err := rec.SetField("cover", id); err != nil {
				return nil, fetch.Wrap(fetch.ErrParse, sourceName, "set cover", err)
			}
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

func setNonEmpty(rec *catalog.Record, name, value string) error {
	if value == "" {
		return nil
	}
	return rec.SetField(name, value)
}

// cleanValue drops OMDb's "N/A" placeholder.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "N/A" {
		return ""
	}
	return value
}

// firstYear keeps the leading year of ranges like "2004" or "2001-2003".
func firstYear(value string) string {
	value = cleanValue(value)
	if len(value) > 4 {
		value = value[:4]
	}
	return value
}

// splitList converts OMDb's comma-joined lists to the multi-value form.
func splitList(value string) string {
	value = cleanValue(value)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return catalog.JoinValues(cleaned)
}

var writerNotePattern = regexp.MustCompile(`\s*\([^)]*\)`)

// splitWriters additionally strips credit notes like "(screenplay)".
func splitWriters(value string) string {
	return splitList(writerNotePattern.ReplaceAllString(value, ""))
}

var runtimePattern = regexp.MustCompile(`(\d+)\s*min`)

func runtimeMinutes(value string) string {
	if m := runtimePattern.FindStringSubmatch(cleanValue(value)); m != nil {
		return m[1]
	}
	return ""
}

func certification(rated string) string {
	rated = cleanValue(rated)
	switch rated {
	case "", "Not Rated", "Unrated":
		return ""
	}
	return rated + " (USA)"
}

func imdbLink(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return ""
	}
	return "https://www.imdb.com/title/" + id + "/"
}
