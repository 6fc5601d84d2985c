package config

import (
	"fmt"
	"sort"
)

// Model kinds accepted in configuration.
const (
	KindXGBoost      = "xgboost"
	KindLightGBM     = "lightgbm"
	KindRandomForest = "random_forest"
)

// ModelEntry declares one servable model: the artifact to fetch and the
// ordered feature schema it was trained on. Schema and key are registered
// together; a partial entry is a startup error, never a per-request one.
type ModelEntry struct {
	Kind     string   `json:"kind" yaml:"kind" toml:"kind"`
	Key      string   `json:"key" yaml:"key" toml:"key"`
	Features []string `json:"features" yaml:"features" toml:"features"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	CacheDir     string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	StoreURL     string `json:"store_url" yaml:"store_url" toml:"store_url"`
	StoreDir     string `json:"store_dir" yaml:"store_dir" toml:"store_dir"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`
	// Artifact fetch tuning. Zero means package defaults.
	FetchAttempts   int `json:"fetch_attempts" yaml:"fetch_attempts" toml:"fetch_attempts"`
	FetchTimeoutSec int `json:"fetch_timeout_sec" yaml:"fetch_timeout_sec" toml:"fetch_timeout_sec"`

	Models map[string]ModelEntry `json:"models" yaml:"models" toml:"models"`
}

// Validate checks the configuration for errors that must fail startup.
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}
	if c.StoreURL != "" && c.StoreDir != "" {
		return fmt.Errorf("store_url and store_dir are mutually exclusive")
	}
	if c.StoreURL == "" && c.StoreDir == "" {
		return fmt.Errorf("one of store_url or store_dir is required")
	}
	for _, id := range c.ModelIDs() {
		m := c.Models[id]
		switch m.Kind {
		case KindXGBoost, KindLightGBM, KindRandomForest:
		case "":
			return fmt.Errorf("model %q: kind is required", id)
		default:
			return fmt.Errorf("model %q: unknown kind %q", id, m.Kind)
		}
		if m.Key == "" {
			return fmt.Errorf("model %q: storage key is required", id)
		}
		if len(m.Features) == 0 {
			return fmt.Errorf("model %q: feature schema is required", id)
		}
	}
	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default_model %q is not a configured model", c.DefaultModel)
		}
	}
	return nil
}

// ModelIDs returns the configured model ids in stable (sorted) order.
func (c Config) ModelIDs() []string {
	ids := make([]string, 0, len(c.Models))
	for id := range c.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
