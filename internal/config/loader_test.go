package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

const yamlCfg = `
addr: ":9090"
store_url: "https://models.example.com"
default_model: xgb
models:
  xgb:
    kind: xgboost
    key: models/xgb_model.bin
    features: [Voltage_lag1, hour_of_day_lag1]
`

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "c.yaml", yamlCfg))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.DefaultModel != "xgb" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	m, ok := cfg.Models["xgb"]
	if !ok || m.Kind != KindXGBoost || m.Key != "models/xgb_model.bin" || len(m.Features) != 2 {
		t.Fatalf("unexpected model entry: %+v", m)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	content := `{"store_dir": "/srv/models", "models": {"rf": {"kind": "random_forest", "key": "rf.json", "features": ["Voltage_lag1"]}}}`
	cfg, err := Load(writeFile(t, "c.json", content))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Models["rf"].Kind != KindRandomForest {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	content := `
store_dir = "/srv/models"

[models.lgbm]
kind = "lightgbm"
key = "lgbm.txt"
features = ["Voltage_lag1"]
`
	cfg, err := Load(writeFile(t, "c.toml", content))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Models["lgbm"].Kind != KindLightGBM {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load(writeFile(t, "c.ini", "x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error")
	}
}

func validConfig() Config {
	return Config{
		StoreURL: "https://models.example.com",
		Models: map[string]ModelEntry{
			"xgb": {Kind: KindXGBoost, Key: "xgb.bin", Features: []string{"Voltage_lag1"}},
		},
	}
}

func TestValidateRejectsPartialEntries(t *testing.T) {
	cases := map[string]func(*Config){
		"no models":      func(c *Config) { c.Models = nil },
		"no store":       func(c *Config) { c.StoreURL = "" },
		"both stores":    func(c *Config) { c.StoreDir = "/srv" },
		"missing kind":   func(c *Config) { c.Models["xgb"] = ModelEntry{Key: "k", Features: []string{"f"}} },
		"unknown kind":   func(c *Config) { c.Models["xgb"] = ModelEntry{Kind: "svm", Key: "k", Features: []string{"f"}} },
		"missing key":    func(c *Config) { c.Models["xgb"] = ModelEntry{Kind: KindXGBoost, Features: []string{"f"}} },
		"missing schema": func(c *Config) { c.Models["xgb"] = ModelEntry{Kind: KindXGBoost, Key: "k"} },
		"bad default":    func(c *Config) { c.DefaultModel = "nope" },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestModelIDsSorted(t *testing.T) {
	cfg := Config{Models: map[string]ModelEntry{"b": {}, "a": {}, "c": {}}}
	ids := cfg.ModelIDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("ids=%v", ids)
	}
}
