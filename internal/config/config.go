package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CAPAREZZOLOGY_"

// Config contains runtime options shared by every command.
type Config struct {
	CredentialsDir string
	APIBaseURL     string
	HTTPTimeout    time.Duration

	// Metadata fetch.
	ArtistID   int
	ArtistName string
	PerPage    int
	SongsCSV   string

	// Scraping.
	LyricsDir       string
	DiscographyURL  string
	Strategy        string
	PageInterval    time.Duration
	SongInterval    time.Duration
	CSVSongInterval time.Duration
	AlbumInterval   time.Duration
	SkipExisting    bool

	// Album selection and cache.
	Albums         string
	ChooseAlbums   bool
	RefreshAlbums  bool
	AlbumCachePath string
	AlbumCacheTTL  time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CredentialsDir:  ".",
		APIBaseURL:      "https://api.genius.com",
		HTTPTimeout:     10 * time.Second,
		ArtistID:        24580,
		PerPage:         50,
		SongsCSV:        "data/caparezza_songs.csv",
		LyricsDir:       "data/lyrics",
		DiscographyURL:  "https://www.azlyrics.com/c/caparezza.html",
		Strategy:        "sibling-walk",
		PageInterval:    500 * time.Millisecond,
		SongInterval:    10 * time.Second,
		CSVSongInterval: time.Second,
		AlbumInterval:   10 * time.Second,
		ChooseAlbums:    false,
		AlbumCacheTTL:   7 * 24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads .env files (the working directory's .env when none are given),
// then overlays CAPAREZZOLOGY_* environment variables onto Default().
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	e := &envReader{}
	cfg.CredentialsDir = e.str("CREDENTIALS_DIR", cfg.CredentialsDir)
	cfg.APIBaseURL = e.str("API_BASE_URL", cfg.APIBaseURL)
	cfg.HTTPTimeout = e.duration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.ArtistID = e.integer("ARTIST_ID", cfg.ArtistID)
	cfg.ArtistName = e.str("ARTIST_NAME", cfg.ArtistName)
	cfg.PerPage = e.integer("PER_PAGE", cfg.PerPage)
	cfg.SongsCSV = e.str("SONGS_CSV", cfg.SongsCSV)
	cfg.LyricsDir = e.str("LYRICS_DIR", cfg.LyricsDir)
	cfg.DiscographyURL = e.str("DISCOGRAPHY_URL", cfg.DiscographyURL)
	cfg.Strategy = e.str("STRATEGY", cfg.Strategy)
	cfg.PageInterval = e.duration("PAGE_INTERVAL", cfg.PageInterval)
	cfg.SongInterval = e.duration("SONG_INTERVAL", cfg.SongInterval)
	cfg.CSVSongInterval = e.duration("CSV_SONG_INTERVAL", cfg.CSVSongInterval)
	cfg.AlbumInterval = e.duration("ALBUM_INTERVAL", cfg.AlbumInterval)
	cfg.SkipExisting = e.boolean("SKIP_EXISTING", cfg.SkipExisting)
	cfg.Albums = e.str("ALBUMS", cfg.Albums)
	cfg.ChooseAlbums = e.boolean("CHOOSE_ALBUMS", cfg.ChooseAlbums)
	cfg.AlbumCachePath = e.str("ALBUM_CACHE", cfg.AlbumCachePath)
	cfg.AlbumCacheTTL = e.duration("ALBUM_CACHE_TTL", cfg.AlbumCacheTTL)
	cfg.LogLevel = e.str("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = e.str("LOG_FORMAT", cfg.LogFormat)
	cfg.LogFile = e.str("LOG_FILE", cfg.LogFile)

	if e.err != nil {
		return Config{}, e.err
	}
	return cfg, nil
}

// Validate rejects values no command can run with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout))
	}
	for name, d := range map[string]time.Duration{
		"page interval":     c.PageInterval,
		"song interval":     c.SongInterval,
		"csv song interval": c.CSVSongInterval,
		"album interval":    c.AlbumInterval,
		"album cache ttl":   c.AlbumCacheTTL,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}

// envReader collects the first malformed variable instead of silently
// falling back to the default.
type envReader struct {
	err error
}

func (e *envReader) lookup(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, key, value, err)
	}
}

func (e *envReader) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return fallback
}

func (e *envReader) integer(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return n
}

func (e *envReader) boolean(key string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return b
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return d
}
