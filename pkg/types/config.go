// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "journal-grabber/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for arXiv search queries.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results per query (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// WindowDays is the submission-date recency window (default 30).
	WindowDays int `json:"window_days" yaml:"window_days"`

	// APIDelay is the minimum spacing between arXiv API calls (default 3s).
	APIDelay time.Duration `json:"api_delay" yaml:"api_delay"`

	// CategoryPrefixes lists the prefixes that mark a topic as an arXiv
	// category code when the topic also contains a dot (e.g. "cs." matches
	// "cs.AI"). Empty uses the built-in defaults.
	CategoryPrefixes []string `json:"category_prefixes" yaml:"category_prefixes"`

	// BareCategories lists topics treated as category codes without a dot
	// (e.g. "cs"). Empty uses the built-in defaults.
	BareCategories []string `json:"bare_categories" yaml:"bare_categories"`
}

// DownloadConfig holds settings for PDF retrieval.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxSizeMB caps the size of a single PDF download (default 100).
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// DefaultDir is the destination directory used when a profile does not
	// set one.
	DefaultDir string `json:"default_dir" yaml:"default_dir"`
}

// SchedulerConfig holds settings for the profile scheduler.
type SchedulerConfig struct {
	// PollInterval is how often the driver checks for due timers (default 1m).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// MinFrequencyHours is the lowest allowed profile interval (default 1).
	MinFrequencyHours int `json:"min_frequency_hours" yaml:"min_frequency_hours"`

	// MaxFrequencyHours is the highest allowed profile interval (default 168).
	MaxFrequencyHours int `json:"max_frequency_hours" yaml:"max_frequency_hours"`
}

// StorageConfig holds catalog database settings.
type StorageConfig struct {
	// DatabasePath is the SQLite database file (default "journalgrabber.db").
	DatabasePath string `json:"database_path" yaml:"database_path"`
}

// ZoteroConfig holds settings for the optional reference-manager forwarder.
type ZoteroConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled turns forwarding of new catalog entries on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// APIKey authenticates against the Zotero API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// UserID selects the user library.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`

	// GroupID, when set, selects a group library instead of the user library.
	GroupID string `json:"group_id,omitempty" yaml:"group_id,omitempty"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `json:"level" yaml:"level"`
}

// Config groups all component configurations.
type Config struct {
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Download  DownloadConfig  `json:"download" yaml:"download"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Zotero    ZoteroConfig    `json:"zotero" yaml:"zotero"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file or flags
// override it.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			DatabasePath: "journalgrabber.db",
		},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: "journal-grabber/0.1"},
			MaxResults: 50,
			WindowDays: 30,
			APIDelay:   3 * time.Second,
		},
		Download: DownloadConfig{
			HTTPConfig: HTTPConfig{Timeout: 60 * time.Second, UserAgent: "journal-grabber/0.1"},
			MaxSizeMB:  100,
			DefaultDir: "downloads",
		},
		Scheduler: SchedulerConfig{
			PollInterval:      time.Minute,
			MinFrequencyHours: 1,
			MaxFrequencyHours: 168,
		},
		Zotero: ZoteroConfig{
			HTTPConfig: HTTPConfig{Timeout: 60 * time.Second, UserAgent: "journal-grabber/0.1"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
