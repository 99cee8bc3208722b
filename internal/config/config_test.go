package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
registry:
  provider: static
  jobs:
    - job_title: Data Scientist
      priority: High
  locations: ["Pune, India"]
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Ingestion.MaxAPICalls != 260 {
		t.Fatalf("expected default budget 260, got %d", cfg.Ingestion.MaxAPICalls)
	}
	if cfg.Drift.MinThresholdPct != 2.0 || cfg.Drift.MaxThresholdPct != 15.0 {
		t.Fatalf("expected default drift thresholds 2/15, got %+v", cfg.Drift)
	}
	if cfg.Schedule.MediumTierFraction != 0.9 || cfg.Schedule.LowTierFraction != 0.75 {
		t.Fatalf("expected default tier fractions, got %+v", cfg.Schedule)
	}
	if cfg.Search.Engine != "google_jobs" || cfg.Search.CountryCode != "in" {
		t.Fatalf("expected default search params, got %+v", cfg.Search)
	}
	if got := cfg.Search.Timeout(); got != 30*time.Second {
		t.Fatalf("expected search timeout 30s, got %v", got)
	}
	if cfg.Storage.Provider != "local" || cfg.Storage.Prefix != "raw" {
		t.Fatalf("expected local storage defaults, got %+v", cfg.Storage)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
ingestion:
  max_api_calls: 40
drift:
  min_threshold_pct: 1.5
  max_threshold_pct: 20
db:
  dsn: postgres://localhost/jobs
  max_conn_life_mins: 45
search:
  api_key: secret
  requests_per_second: 2
storage:
  provider: gcs
  gcs:
    bucket: raw-postings
telemetry:
  pubsub:
    enabled: true
    project_id: talentlens
    topic_id: run-summaries
server:
  enabled: true
  port: 9090
batch:
  month_override: 2026-01
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Ingestion.MaxAPICalls != 40 {
		t.Fatalf("expected budget 40, got %d", cfg.Ingestion.MaxAPICalls)
	}
	if cfg.Drift.MinThresholdPct != 1.5 || cfg.Drift.MaxThresholdPct != 20 {
		t.Fatalf("expected drift overrides to apply, got %+v", cfg.Drift)
	}
	if got := cfg.DB.MaxConnLifetime(); got != 45*time.Minute {
		t.Fatalf("expected conn lifetime 45m, got %v", got)
	}
	if cfg.Search.APIKey != "secret" || cfg.Search.RequestsPerSecond != 2 {
		t.Fatalf("expected search overrides to apply, got %+v", cfg.Search)
	}
	if cfg.Storage.Provider != "gcs" || cfg.Storage.GCS.Bucket != "raw-postings" {
		t.Fatalf("expected gcs storage, got %+v", cfg.Storage)
	}
	if !cfg.Telemetry.PubSub.Enabled || cfg.Telemetry.PubSub.TopicID != "run-summaries" {
		t.Fatalf("expected pubsub sink enabled, got %+v", cfg.Telemetry)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != 9090 {
		t.Fatalf("expected ops server on 9090, got %+v", cfg.Server)
	}
	if cfg.Batch.MonthOverride != "2026-01" {
		t.Fatalf("expected batch override, got %+v", cfg.Batch)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Ingestion: IngestionConfig{MaxAPICalls: 260},
		Drift:     DriftConfig{MinThresholdPct: 2.0, MaxThresholdPct: 15.0},
		Schedule:  ScheduleConfig{MediumTierFraction: 0.9, LowTierFraction: 0.75},
		DB:        DBConfig{DSN: "postgres://localhost/jobs"},
		Search:    SearchConfig{TimeoutSeconds: 30},
		Storage:   StorageConfig{Provider: "local"},
		Registry:  RegistryConfig{Provider: "postgres"},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid budget",
			cfg: func() Config {
				c := base
				c.Ingestion.MaxAPICalls = 0
				return c
			}(),
			want: "ingestion.max_api_calls",
		},
		{
			name: "inverted thresholds",
			cfg: func() Config {
				c := base
				c.Drift.MaxThresholdPct = 1.0
				return c
			}(),
			want: "drift.max_threshold_pct",
		},
		{
			name: "fraction out of range",
			cfg: func() Config {
				c := base
				c.Schedule.LowTierFraction = 1.5
				return c
			}(),
			want: "schedule.low_tier_fraction",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.Search.TimeoutSeconds = 0
				return c
			}(),
			want: "search.timeout_seconds",
		},
		{
			name: "unknown storage provider",
			cfg: func() Config {
				c := base
				c.Storage.Provider = "s3"
				return c
			}(),
			want: "storage provider",
		},
		{
			name: "gcs without bucket",
			cfg: func() Config {
				c := base
				c.Storage.Provider = "gcs"
				return c
			}(),
			want: "storage.gcs.bucket",
		},
		{
			name: "postgres registry without dsn",
			cfg: func() Config {
				c := base
				c.DB.DSN = ""
				return c
			}(),
			want: "db.dsn",
		},
		{
			name: "pubsub missing topic",
			cfg: func() Config {
				c := base
				c.Telemetry.PubSub.Enabled = true
				c.Telemetry.PubSub.ProjectID = "talentlens"
				return c
			}(),
			want: "telemetry.pubsub",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
