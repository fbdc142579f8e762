package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/images"
	"quarto/internal/logging"
)

const (
	sourceName = "IGDB"
	maxReturns = 20
)

type gamePayload struct {
	Name       string  `json:"name"`
	Summary    string  `json:"summary"`
	URL        string  `json:"url"`
	Publishers []int64 `json:"publishers"`
	Developers []int64 `json:"developers"`
	Genres     []int64 `json:"genres"`
	Cover      struct {
		URL string `json:"url"`
	} `json:"cover"`
	Esrb struct {
		Rating int64 `json:"rating"`
	} `json:"esrb"`
	Pegi struct {
		Rating int64 `json:"rating"`
	} `json:"pegi"`
	ReleaseDates []struct {
		Year     int64 `json:"y"`
		Platform int64 `json:"platform"`
	} `json:"release_dates"`
}

type companyPayload struct {
	Name string `json:"name"`
}

// Fetcher searches IGDB. An API key is required; searches without one fail
// fast before any network call.
type Fetcher struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	registrar  images.Registrar
	logger     *slog.Logger

	mu        sync.Mutex
	companies map[int64]string
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

// New creates an IGDB fetcher. An empty API key is accepted here and
// reported at search time so the remaining sources keep working.
func New(apiKey, baseURL string, registrar images.Registrar, logger *slog.Logger, opts ...Option) *Fetcher {
	if registrar == nil {
		registrar = images.Nop{}
	}
	f := &Fetcher{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		registrar:  registrar,
		logger:     logging.NewComponentLogger(logger, "igdb"),
		companies:  make(map[int64]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Source implements fetch.Fetcher.
func (f *Fetcher) Source() string { return sourceName }

// CanSearch implements fetch.Fetcher.
func (f *Fetcher) CanSearch(key fetch.KeyKind) bool { return key == fetch.KeyKeyword }

// CanFetch implements fetch.Fetcher.
func (f *Fetcher) CanFetch(typ catalog.Type) bool { return typ == catalog.TypeGame }

// OptionalFields implements fetch.Fetcher.
func (f *Fetcher) OptionalFields() map[string]string {
	return map[string]string{
		"pegi": "PEGI Rating",
		"igdb": "IGDB Link",
	}
}

// UpdateRequest implements fetch.Fetcher.
func (f *Fetcher) UpdateRequest(rec *catalog.Record) fetch.Request {
	if title := rec.Field("title"); title != "" {
		return fetch.Request{Key: fetch.KeyKeyword, Value: title, Type: catalog.TypeGame}
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
	if req.Key != fetch.KeyKeyword {
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, fmt.Sprintf("search key %s", req.Key), nil)
	}

	if err := ensureOptionalFields(req, schema); err != nil {
		return nil, fetch.Wrap(fetch.ErrParse, sourceName, "extend schema", err)
	}

	endpoint, err := url.Parse(f.baseURL + "/games/")
	if err != nil {
		return nil, fetch.Wrap(fetch.ErrConfiguration, sourceName, "parse base url", err)
	}
	params := url.Values{}
	params.Set("search", req.Value)
	params.Set("fields", "*")
	params.Set("limit", strconv.Itoa(maxReturns))
	endpoint.RawQuery = params.Encode()

	var payload []gamePayload
	if err := f.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	records := make([]*catalog.Record, 0, len(payload))
	for _, game := range payload {
		rec, err := f.populate(req, schema, game)
		if err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "populate record", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ensureOptionalFields adds the opted-in fields to the schema before any
// record references them.
func ensureOptionalFields(req fetch.Request, schema *catalog.Schema) error {
	if req.WantsOptional("pegi") && !schema.HasField("pegi") {
		if err := schema.AddField(catalog.Field{
			Name: "pegi", Title: "PEGI Rating", Category: "General",
			Kind: catalog.KindChoice, Flags: catalog.FlagAllowGrouped,
			Allowed: pegiAllowed,
		}); err != nil {
			return err
		}
	}
	if req.WantsOptional("igdb") && !schema.HasField("igdb") {
		if err := schema.AddField(catalog.Field{
			Name: "igdb", Title: "IGDB Link", Category: "General", Kind: catalog.KindURL,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) populate(req fetch.Request, schema *catalog.Schema, game gamePayload) (*catalog.Record, error) {
	rec := catalog.NewRecord(schema)
	set := func(name, value string) error {
		if value == "" {
			return nil
		}
		return rec.SetField(name, value)
	}

	if err := set("title", game.Name); err != nil {
		return nil, err
	}
	if err := set("description", game.Summary); err != nil {
		return nil, err
	}
	if err := set("certification", esrbNames[game.Esrb.Rating]); err != nil {
		return nil, err
	}
	if err := set("pub-id", joinIDs(game.Publishers)); err != nil {
		return nil, err
	}
	if err := set("dev-id", joinIDs(game.Developers)); err != nil {
		return nil, err
	}

	cover := game.Cover.URL
	if strings.HasPrefix(cover, "//") {
		cover = "https:" + cover
	}
	if err := set("cover", cover); err != nil {
		return nil, err
	}

	var genres []string
	for _, id := range game.Genres {
		if name := genreNames[id]; name != "" {
			genres = append(genres, name)
		}
	}
	if err := set("genre", catalog.JoinValues(genres)); err != nil {
		return nil, err
	}

	// just the first release: its year and platform
	if len(game.ReleaseDates) > 0 {
		release := game.ReleaseDates[0]
		if release.Year > 0 {
			if err := set("year", strconv.FormatInt(release.Year, 10)); err != nil {
				return nil, err
			}
		}
		if platform := platformNames[release.Platform]; platform != "" {
			if renamed, ok := platformRenames[platform]; ok {
				platform = renamed
			} else {
				schema.ExtendAllowed("platform", platform)
			}
			if err := set("platform", platform); err != nil {
				return nil, err
			}
		}
	}

	if req.WantsOptional("pegi") {
		if err := set("pegi", pegiNames[game.Pegi.Rating]); err != nil {
			return nil, err
		}
	}
	if req.WantsOptional("igdb") {
		if err := set("igdb", game.URL); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// ResolveFull implements fetch.Fetcher. It trades the raw company ids held
// in pub-id and dev-id for display names and registers the cover image.
func (f *Fetcher) ResolveFull(ctx context.Context, req fetch.Request, rec *catalog.Record) (*catalog.Record, error) {
	if rec == nil {
		return nil, fetch.Wrap(fetch.ErrUnsupported, sourceName, "resolve nil record", nil)
	}

	if rec.Field("publisher") == "" {
		names := f.companyNames(ctx, rec.Values("pub-id"))
		if err := rec.SetValues("publisher", names); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "set publisher", err)
		}
	}
	if rec.Field("developer") == "" {
		names := f.companyNames(ctx, rec.Values("dev-id"))
		if err := rec.SetValues("developer", names); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "set developer", err)
		}
	}

	// cover may still be a URL from search; swap it for a registered id
	if cover := rec.Field("cover"); strings.Contains(cover, "/") {
		id := f.registrar.AddImage(ctx, cover, true)
		// an empty image id is acceptable
		if err := rec.SetField("cover", id); err != nil {
			return nil, fetch.Wrap(fetch.ErrParse, sourceName, "set cover", err)
		}
	}

	rec.ClearField("pub-id")
	rec.ClearField("dev-id")
	return rec, nil
}

func (f *Fetcher) companyNames(ctx context.Context, ids []string) []string {
	var names []string
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		name, err := f.companyName(ctx, id)
		if err != nil {
			f.logger.Warn("company lookup failed",
				logging.Int64("company_id", id),
				logging.Error(err))
			continue
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (f *Fetcher) companyName(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	if name, ok := f.companies[id]; ok {
		f.mu.Unlock()
		return name, nil
	}
	f.mu.Unlock()

	endpoint, err := url.Parse(fmt.Sprintf("%s/companies/%d", f.baseURL, id))
	if err != nil {
		return "", fetch.Wrap(fetch.ErrConfiguration, sourceName, "parse base url", err)
	}
	params := url.Values{}
	params.Set("fields", "*")
	endpoint.RawQuery = params.Encode()

	var payload []companyPayload
	if err := f.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return "", err
	}
	var name string
	if len(payload) > 0 {
		name = payload[0].Name
	}
	f.mu.Lock()
	f.companies[id] = name
	f.mu.Unlock()
	return name, nil
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fetch.Wrap(fetch.ErrTransport, sourceName, "build request", err)
	}
	req.Header.Set("X-Mashape-Key", f.apiKey)
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

func joinIDs(ids []int64) string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, strconv.FormatInt(id, 10))
	}
	return catalog.JoinValues(values)
}
