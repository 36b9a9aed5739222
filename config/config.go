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

	"github.com/pitops/minedispatch/core/dispatch"
	"github.com/pitops/minedispatch/core/metrics"
	"github.com/pitops/minedispatch/infra/mqttfeed"
)

type Config struct {
	Dispatch dispatch.Config `json:"dispatch"`
	Metrics  metrics.Config  `json:"metrics"`
	Feed     mqttfeed.Config `json:"feed"`
	API      APIConfig       `json:"api"`
	Fleet    FleetConfig     `json:"fleet"`
}

// APIConfig defines the HTTP listener settings.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// FleetConfig controls the initial registry contents. With Seed enabled the
// demo roster is loaded; otherwise the registry starts empty and fills from
// the telemetry feed.
type FleetConfig struct {
	Seed bool `json:"seed"`
}

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
	if err := k.Load(env.Provider("MD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "md_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Dispatch.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Feed.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
