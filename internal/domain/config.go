package domain

import "time"

type Config struct {
	MalClientID    string        `yaml:"mal_client_id" mapstructure:"mal_client_id"`
	MalBaseURL     string        `yaml:"mal_base_url" mapstructure:"mal_base_url"`
	CacheTTL       time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	ListenAddr     string        `yaml:"listen_addr" mapstructure:"listen_addr"`
	DatabaseDir    string        `yaml:"database_dir" mapstructure:"database_dir"`
	SessionSecret  string        `yaml:"session_secret" mapstructure:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	ScrapeReviews  bool          `yaml:"scrape_reviews" mapstructure:"scrape_reviews"`
	GenreMapFile   string        `yaml:"genre_map_file" mapstructure:"genre_map_file"`
	LogLevel       string        `yaml:"log_level" mapstructure:"log_level"`

	// GenreIDs is the effective name-to-id mapping after applying any
	// overrides from GenreMapFile on top of the built-in table.
	GenreIDs map[string]int `yaml:"-" mapstructure:"-"`
}
