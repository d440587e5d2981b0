package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v8"
	"gopkg.in/yaml.v3"
)

// VAMANA_CONFIG names the environment variable holding the path to a YAML
// config file. If unset, Load falls back to environment-variable defaults
// only (see Config's env tags).
const VAMANA_CONFIG = "VAMANA_CONFIG"

// Load builds a Config from environment variables, optionally overlaid with
// a YAML file named by VAMANA_CONFIG. This is a convenience for processes
// that embed the engine and want to configure it the way the rest of the
// ambient stack is configured; library callers can just construct Config
// directly.
func Load() (Config, error) {
	cfg := Config{}
	opts := env.Options{Prefix: "VAMANA_"}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to parse env config: %w", err)
	}
	path, ok := os.LookupEnv(VAMANA_CONFIG)
	if !ok {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
