// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	Drift     DriftConfig     `mapstructure:"drift"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	DB        DBConfig        `mapstructure:"db"`
	Search    SearchConfig    `mapstructure:"search"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Batch     BatchConfig     `mapstructure:"batch"`
}

// IngestionConfig bounds the crawl run.
type IngestionConfig struct {
	// MaxAPICalls is the local call budget for one run, checked before every
	// provider call. It is distinct from the provider's own account quota.
	MaxAPICalls int `mapstructure:"max_api_calls"`
}

// DriftConfig holds the distribution thresholds driving policy changes.
type DriftConfig struct {
	// MinThresholdPct marks a category as starved below this share.
	MinThresholdPct float64 `mapstructure:"min_threshold_pct"`
	// MaxThresholdPct marks a category as saturated above this share.
	MaxThresholdPct float64 `mapstructure:"max_threshold_pct"`
}

// ScheduleConfig holds the per-tier location coverage fractions.
type ScheduleConfig struct {
	MediumTierFraction float64 `mapstructure:"medium_tier_fraction"`
	LowTierFraction    float64 `mapstructure:"low_tier_fraction"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxConns        int32  `mapstructure:"max_conns"`
	MinConns        int32  `mapstructure:"min_conns"`
	MaxConnLifeMins int    `mapstructure:"max_conn_life_mins"`
}

// MaxConnLifetime converts the lifetime knob into a duration.
func (c DBConfig) MaxConnLifetime() time.Duration {
	return time.Duration(c.MaxConnLifeMins) * time.Minute
}

// SearchConfig configures the external job-search API client.
type SearchConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Engine         string `mapstructure:"engine"`
	LanguageCode   string `mapstructure:"hl"`
	CountryCode    string `mapstructure:"gl"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`

	// RequestsPerSecond throttles outbound calls client-side; <= 0 disables
	// pacing entirely.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// Timeout converts the timeout knob into a duration.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig selects and parameterizes the raw artifact sink.
type StorageConfig struct {
	// Provider is one of "local", "gcs", "noop".
	Provider string `mapstructure:"provider"`
	Prefix   string `mapstructure:"prefix"`
	Local    struct {
		BaseDir string `mapstructure:"base_dir"`
	} `mapstructure:"local"`
	GCS struct {
		Bucket string `mapstructure:"bucket"`
	} `mapstructure:"gcs"`
}

// StaticJob is one entry of the fallback job list used without a database.
type StaticJob struct {
	JobTitle string `mapstructure:"job_title"`
	Priority string `mapstructure:"priority"`
}

// RegistryConfig selects the job/location registry backend.
type RegistryConfig struct {
	// Provider is "postgres" or "static".
	Provider  string      `mapstructure:"provider"`
	Jobs      []StaticJob `mapstructure:"jobs"`
	Locations []string    `mapstructure:"locations"`
}

// TelemetryConfig wires optional run-summary sinks.
type TelemetryConfig struct {
	PubSub struct {
		Enabled   bool   `mapstructure:"enabled"`
		ProjectID string `mapstructure:"project_id"`
		TopicID   string `mapstructure:"topic_id"`
	} `mapstructure:"pubsub"`
}

// ServerConfig controls the optional ops HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// BatchConfig controls batch identification.
type BatchConfig struct {
	// MonthOverride pins the batch ID instead of deriving YYYY-MM from the
	// clock; used for backfills.
	MonthOverride string `mapstructure:"month_override"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ingestion.max_api_calls", 260)
	v.SetDefault("drift.min_threshold_pct", 2.0)
	v.SetDefault("drift.max_threshold_pct", 15.0)
	v.SetDefault("schedule.medium_tier_fraction", 0.9)
	v.SetDefault("schedule.low_tier_fraction", 0.75)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.max_conn_life_mins", 30)
	v.SetDefault("search.base_url", "https://serpapi.com/search.json")
	v.SetDefault("search.engine", "google_jobs")
	v.SetDefault("search.hl", "en")
	v.SetDefault("search.gl", "in")
	v.SetDefault("search.timeout_seconds", 30)
	v.SetDefault("search.requests_per_second", 0)
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.prefix", "raw")
	v.SetDefault("storage.local.base_dir", "data/raw")
	v.SetDefault("registry.provider", "postgres")
	v.SetDefault("telemetry.pubsub.enabled", false)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Ingestion.MaxAPICalls <= 0 {
		return fmt.Errorf("ingestion.max_api_calls must be > 0")
	}
	if c.Drift.MinThresholdPct < 0 {
		return fmt.Errorf("drift.min_threshold_pct must be >= 0")
	}
	if c.Drift.MaxThresholdPct <= c.Drift.MinThresholdPct {
		return fmt.Errorf("drift.max_threshold_pct must be > drift.min_threshold_pct")
	}
	if c.Schedule.MediumTierFraction <= 0 || c.Schedule.MediumTierFraction > 1 {
		return fmt.Errorf("schedule.medium_tier_fraction must be in (0, 1]")
	}
	if c.Schedule.LowTierFraction <= 0 || c.Schedule.LowTierFraction > 1 {
		return fmt.Errorf("schedule.low_tier_fraction must be in (0, 1]")
	}
	if c.Search.TimeoutSeconds <= 0 {
		return fmt.Errorf("search.timeout_seconds must be > 0")
	}
	switch c.Storage.Provider {
	case "local", "gcs", "noop":
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	if c.Storage.Provider == "gcs" && c.Storage.GCS.Bucket == "" {
		return fmt.Errorf("storage.gcs.bucket must be set when storage provider is 'gcs'")
	}
	switch c.Registry.Provider {
	case "postgres", "static":
	default:
		return fmt.Errorf("unknown registry provider: %s", c.Registry.Provider)
	}
	if c.Registry.Provider == "postgres" && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set when registry provider is 'postgres'")
	}
	if c.Telemetry.PubSub.Enabled && (c.Telemetry.PubSub.ProjectID == "" || c.Telemetry.PubSub.TopicID == "") {
		return fmt.Errorf("telemetry.pubsub.project_id and topic_id must be set when pubsub is enabled")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the ops server is enabled")
	}
	return nil
}
