package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "skl2pmml" {
		t.Errorf("expected Name=skl2pmml, got %s", cfg.Name)
	}
	if !cfg.Conversion.PruneUnusedFields {
		t.Error("expected PruneUnusedFields=true by default")
	}
	if cfg.Batch.MaxParallel != 4 {
		t.Errorf("expected MaxParallel=4, got %d", cfg.Batch.MaxParallel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SKL2PMML_LOG_LEVEL", "")
	t.Setenv("SKL2PMML_CATALOG", "")
	t.Setenv("SKL2PMML_PARALLEL", "")
	t.Setenv("SKL2PMML_DEBUG", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "skl2pmml.yaml")

	cfg := DefaultConfig()
	cfg.Header.Copyright = "ACME"
	cfg.Conversion.NegateComparisons = true
	cfg.Logging.Categories = map[string]bool{"encoder": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Header.Copyright != "ACME" {
		t.Errorf("expected Copyright=ACME, got %s", loaded.Header.Copyright)
	}
	if !loaded.Conversion.NegateComparisons {
		t.Error("expected NegateComparisons=true after round trip")
	}
	if enabled, ok := loaded.Logging.Categories["encoder"]; !ok || enabled {
		t.Errorf("expected encoder category disabled, got %v (present=%v)", enabled, ok)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("SKL2PMML_PARALLEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Batch.MaxParallel != 4 {
		t.Errorf("expected default MaxParallel=4, got %d", cfg.Batch.MaxParallel)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("logging: [unterminated"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SKL2PMML_LOG_LEVEL", "DEBUG")
	t.Setenv("SKL2PMML_CATALOG", "/tmp/history.db")
	t.Setenv("SKL2PMML_PARALLEL", "9")
	t.Setenv("SKL2PMML_DEBUG", "true")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %s", cfg.Logging.Level)
	}
	if !cfg.Logging.DebugMode {
		t.Error("expected DebugMode=true")
	}
	if !cfg.IsCatalogEnabled() || cfg.Catalog.Path != "/tmp/history.db" {
		t.Errorf("expected catalog enabled at /tmp/history.db, got %v %s", cfg.Catalog.Enabled, cfg.Catalog.Path)
	}
	if cfg.Batch.MaxParallel != 9 {
		t.Errorf("expected MaxParallel=9, got %d", cfg.Batch.MaxParallel)
	}
}

func TestConfig_EnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv("SKL2PMML_PARALLEL", "lots")
	t.Setenv("SKL2PMML_DEBUG", "maybe")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Batch.MaxParallel != 4 {
		t.Errorf("expected MaxParallel to stay 4, got %d", cfg.Batch.MaxParallel)
	}
	if cfg.Logging.DebugMode {
		t.Error("expected DebugMode to stay false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero parallel", func(c *Config) { c.Batch.MaxParallel = 0 }, true},
		{"catalog without path", func(c *Config) { c.Catalog.Enabled = true; c.Catalog.Path = "" }, true},
		{"json format", func(c *Config) { c.Logging.Format = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	cfg := LoggingConfig{}
	if cfg.IsCategoryEnabled("encoder") {
		t.Error("categories must be disabled when debug_mode is off")
	}

	cfg.DebugMode = true
	if !cfg.IsCategoryEnabled("encoder") {
		t.Error("all categories should be enabled without a filter")
	}

	cfg.Categories = map[string]bool{"encoder": false}
	if cfg.IsCategoryEnabled("encoder") {
		t.Error("explicitly disabled category reported enabled")
	}
	if !cfg.IsCategoryEnabled("translator") {
		t.Error("unlisted category should default to enabled")
	}
}
