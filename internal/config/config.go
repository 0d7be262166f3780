package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/varoOP/aniwatch/internal/domain"
)

// Load loads configuration from multiple sources:
// 1. Config file (optional)
// 2. Environment variables (ANIWATCH_*)
//
// An empty mal_client_id is not an error: the catalog client treats a
// missing credential as "service unavailable" and every catalog operation
// degrades to its empty value.
func Load() (*domain.Config, error) {
	cfg := &domain.Config{
		MalClientID:    viper.GetString("mal_client_id"),
		MalBaseURL:     viper.GetString("mal_base_url"),
		CacheTTL:       durationSetting("cache_ttl"),
		RequestTimeout: durationSetting("request_timeout"),
		ListenAddr:     viper.GetString("listen_addr"),
		DatabaseDir:    viper.GetString("database_dir"),
		SessionSecret:  viper.GetString("session_secret"),
		SessionTTL:     durationSetting("session_ttl"),
		ScrapeReviews:  viper.GetBool("scrape_reviews"),
		GenreMapFile:   viper.GetString("genre_map_file"),
		LogLevel:       viper.GetString("log_level"),
	}

	if cfg.MalBaseURL == "" {
		cfg.MalBaseURL = "https://api.myanimelist.net/v2"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 300 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DatabaseDir == "" {
		cfg.DatabaseDir = "."
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("session_secret is required (set via config file or ANIWATCH_SESSION_SECRET environment variable)")
	}

	genres, err := loadGenreIDs(cfg.GenreMapFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load genre map")
	}
	cfg.GenreIDs = genres

	return cfg, nil
}

// durationSetting reads key as a Go duration string ("300s", "5m"). A
// bare number is taken as seconds, not nanoseconds.
func durationSetting(key string) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return viper.GetDuration(key)
}

// loadGenreIDs returns the built-in genre table, with entries from the
// optional YAML override file merged on top.
func loadGenreIDs(path string) (map[string]int, error) {
	genres := domain.DefaultGenreIDs()
	if path == "" {
		return genres, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	overrides := map[string]int{}
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	for name, id := range overrides {
		genres[name] = id
	}

	return genres, nil
}
