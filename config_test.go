package wingadmin

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Owner != "paraflightlog" {
		t.Errorf("Owner = %q, want paraflightlog", cfg.Owner)
	}
	if cfg.Repo != "paraflightlog-wings" {
		t.Errorf("Repo = %q, want paraflightlog-wings", cfg.Repo)
	}
	if cfg.Branch != "main" {
		t.Errorf("Branch = %q, want main", cfg.Branch)
	}
	if cfg.CatalogPath != "wings.json" {
		t.Errorf("CatalogPath = %q, want wings.json", cfg.CatalogPath)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", cfg.BaseDelay)
	}
	if cfg.SettleDelay != 500*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 500ms", cfg.SettleDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("WINGADMIN_OWNER", "someone")
	t.Setenv("WINGADMIN_REPO", "wings-fork")
	t.Setenv("WINGADMIN_BRANCH", "staging")
	t.Setenv("WINGADMIN_CATALOG", "catalog.json")
	t.Setenv("WINGADMIN_DEBUG", "1")

	cfg := ConfigFromEnv()
	if cfg.Owner != "someone" || cfg.Repo != "wings-fork" || cfg.Branch != "staging" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.CatalogPath != "catalog.json" {
		t.Errorf("CatalogPath = %q, want catalog.json", cfg.CatalogPath)
	}
	if !cfg.Debug {
		t.Error("Debug not enabled")
	}
}

func TestConfig_WithDefaults_FillsUnsetFields(t *testing.T) {
	cfg := Config{Owner: "someone"}.WithDefaults()

	if cfg.Owner != "someone" {
		t.Errorf("Owner = %q, explicit value overwritten", cfg.Owner)
	}
	if cfg.Repo != "paraflightlog-wings" {
		t.Errorf("Repo = %q, default not applied", cfg.Repo)
	}
	if cfg.MaxRetries != 3 || cfg.BaseDelay != time.Second {
		t.Errorf("retry defaults not applied: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"missing owner", func(c *Config) { c.Owner = "" }, "Owner"},
		{"missing repo", func(c *Config) { c.Repo = "" }, "Repo"},
		{"missing branch", func(c *Config) { c.Branch = " " }, "Branch"},
		{"missing catalog path", func(c *Config) { c.CatalogPath = "" }, "CatalogPath"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "MaxRetries"},
		{"negative delay", func(c *Config) { c.BaseDelay = -time.Second }, "BaseDelay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)

			err := cfg.Validate()
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", validationErr.Field, tt.field)
			}
		})
	}
}
