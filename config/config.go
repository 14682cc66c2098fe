package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/disburse/core/disburse/logging"
	"github.com/kilianp07/disburse/core/factory"
	"github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/core/solver"
	"github.com/kilianp07/disburse/infra/optimize"
	"github.com/kilianp07/disburse/infra/routing"
)

type Config struct {
	Disbursement DisbursementConfig   `json:"disbursement"`
	Routing      routing.Config       `json:"routing"`
	Optimize     optimize.Config      `json:"optimize"`
	Metrics      metrics.Config       `json:"metrics"`
	RunLog       logging.Config       `json:"run_log"`
	Tracker      factory.ModuleConfig `json:"tracker"`
	API          APIConfig            `json:"api"`
}

// Load reads a YAML or JSON file, applies K_ environment overrides (double
// underscores separate nesting levels) and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Disbursement.SetDefaults()
	c.Routing.SetDefaults()
	c.Optimize.SetDefaults()
	c.Metrics.SetDefaults()
	c.RunLog.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section. Routing and optimize settings are only
// checked when the selected solver uses them.
func (c Config) Validate() error {
	if err := c.Disbursement.Validate(); err != nil {
		return fmt.Errorf("disbursement: %w", err)
	}
	if c.UsesRoadNetwork() {
		if err := c.Routing.Validate(); err != nil {
			return err
		}
		if c.Routing.AccessToken == "" {
			return fmt.Errorf("routing: access_token is required for %s cost", solver.CostRoadNetwork)
		}
	}
	if c.UsesRemoteOptimizer() {
		if err := c.Optimize.Validate(); err != nil {
			return err
		}
	}
	if err := c.RunLog.Validate(); err != nil {
		return err
	}
	return c.API.Validate()
}

// UsesRoadNetwork reports whether the solver needs the matrix API.
func (c Config) UsesRoadNetwork() bool {
	return c.Disbursement.Solver.Type != solver.KindGreedy && c.Disbursement.Solver.Cost == solver.CostRoadNetwork
}

// UsesRemoteOptimizer reports whether routing is delegated to the optimize
// service.
func (c Config) UsesRemoteOptimizer() bool {
	return c.Disbursement.Solver.Type == solver.KindVRP && c.Disbursement.Solver.VRP.Backend == "remote"
}
