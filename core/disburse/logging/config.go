package logging

import "fmt"

// Backends lists the accepted Config.Backend values.
func Backends() []string { return []string{"none", "jsonl", "sqlite", "postgres"} }

// Config selects the run log backend.
type Config struct {
	// Backend is none, jsonl, sqlite, or postgres.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	DSN        string `json:"dsn"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "runs.jsonl"
		case "sqlite":
			c.Path = "runs.db"
		}
	}
}

// Validate checks the backend settings.
func (c Config) Validate() error {
	switch c.Backend {
	case "none", "jsonl", "sqlite":
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("run_log: postgres backend requires dsn")
		}
	default:
		return fmt.Errorf("run_log: unknown backend %q", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("run_log: rotation settings must be >= 0")
	}
	return nil
}

// New opens the store described by cfg. JSONL files rotate when MaxSizeMB
// is set.
func New(cfg Config) (RunStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	default:
		return NopStore{}, nil
	}
}
