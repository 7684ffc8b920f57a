package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8082",
		SourceBackend:   "files",
		RegistryPath:    "./data/cadastro_cartorios.csv",
		CollectionsPath: "./data/arrecadacao.csv",
		SourceEncoding:  "utf8",
		FetchTimeout:    30 * time.Second,
		SeriesCacheSize: 100,
		SeriesCacheTTL:  5 * time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid files backend config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid http backend config",
			mutate: func(c *Config) {
				c.SourceBackend = "http"
				c.CollectionsURL = "https://drive.google.com/uc?export=download&id=abc"
			},
		},
		{
			name: "valid sheets backend config",
			mutate: func(c *Config) {
				c.SourceBackend = "sheets"
				c.GoogleSpreadsheetID = "sheet-id"
			},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid backend",
			mutate:      func(c *Config) { c.SourceBackend = "oracle" },
			wantErr:     true,
			errorString: "invalid source backend 'oracle'",
		},
		{
			name:        "invalid encoding",
			mutate:      func(c *Config) { c.SourceEncoding = "utf16" },
			wantErr:     true,
			errorString: "invalid source encoding 'utf16'",
		},
		{
			name: "http backend without URL",
			mutate: func(c *Config) {
				c.SourceBackend = "http"
				c.CollectionsURL = ""
			},
			wantErr:     true,
			errorString: "COLLECTIONS_URL is required",
		},
		{
			name: "http backend with bad scheme",
			mutate: func(c *Config) {
				c.SourceBackend = "http"
				c.CollectionsURL = "ftp://example.com/export.csv"
			},
			wantErr:     true,
			errorString: "invalid collections URL scheme 'ftp'",
		},
		{
			name: "sheets backend without spreadsheet id",
			mutate: func(c *Config) {
				c.SourceBackend = "sheets"
				c.GoogleSpreadsheetID = ""
			},
			wantErr:     true,
			errorString: "Google Spreadsheet ID is required",
		},
		{
			name:        "fetch timeout too small",
			mutate:      func(c *Config) { c.FetchTimeout = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name:        "cache size too small",
			mutate:      func(c *Config) { c.SeriesCacheSize = 0 },
			wantErr:     true,
			errorString: "invalid series cache size 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8082" {
		t.Fatalf("default port: %s", cfg.Port)
	}
	if cfg.SourceBackend != "files" {
		t.Fatalf("default backend: %s", cfg.SourceBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
