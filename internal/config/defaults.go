package config

const (
	defaultCatalogPath        = "~/.local/share/quarto/catalog.db"
	defaultImageDir           = "~/.local/share/quarto/images"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultRequestsPerSecond  = 2.0
	defaultMergeThreshold     = 5.0
	defaultIGDBBaseURL        = "https://api.igdb.com/v4"
	defaultOMDBBaseURL        = "https://www.omdbapi.com"
	defaultKinoBaseURL        = "https://www.kino.de"
	defaultOpenLibraryBaseURL = "https://openlibrary.org"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogPath: defaultCatalogPath,
			ImageDir:    defaultImageDir,
		},
		Fetch: Fetch{
			RequestsPerSecond: defaultRequestsPerSecond,
			MergeThreshold:    defaultMergeThreshold,
		},
		Sources: Sources{
			IGDB: IGDB{
				Enabled: true,
				BaseURL: defaultIGDBBaseURL,
			},
			OMDB: OMDB{
				Enabled: true,
				BaseURL: defaultOMDBBaseURL,
			},
			Kino: Kino{
				Enabled: true,
				BaseURL: defaultKinoBaseURL,
			},
			OpenLibrary: OpenLibrary{
				Enabled: true,
				BaseURL: defaultOpenLibraryBaseURL,
			},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
