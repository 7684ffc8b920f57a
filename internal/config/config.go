package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Source backend selection: files, http or sheets.
	SourceBackend string

	// Local files (files backend; the http backend still reads the
	// registry from disk, as production ships it next to the binary).
	RegistryPath    string
	CollectionsPath string
	SourceEncoding  string // utf8 or latin1

	// Remote collections export (http backend).
	CollectionsURL string
	FetchTimeout   time.Duration

	// Google Sheets (sheets backend)
	GoogleSpreadsheetID    string
	GoogleRegistrySheet    string
	GoogleCollectionsSheet string

	// Series cache in the HTTP layer
	SeriesCacheSize int
	SeriesCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		SourceBackend: getEnv("SOURCE_BACKEND", "files"),

		RegistryPath:    getEnv("REGISTRY_PATH", "./data/cadastro_cartorios.csv"),
		CollectionsPath: getEnv("COLLECTIONS_PATH", "./data/arrecadacao.csv"),
		SourceEncoding:  getEnv("SOURCE_ENCODING", "utf8"),

		CollectionsURL: getEnv("COLLECTIONS_URL", ""),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		GoogleSpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleRegistrySheet:    getEnv("GOOGLE_REGISTRY_SHEET_NAME", ""),
		GoogleCollectionsSheet: getEnv("GOOGLE_COLLECTIONS_SHEET_NAME", ""),

		SeriesCacheSize: getEnvInt("SERIES_CACHE_SIZE", 100),
		SeriesCacheTTL:  getEnvDuration("SERIES_CACHE_TTL", 5*time.Minute),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.SourceBackend {
	case "files", "http", "sheets":
	default:
		errors = append(errors, fmt.Sprintf("invalid source backend '%s': must be one of [files http sheets]", c.SourceBackend))
	}

	switch c.SourceEncoding {
	case "utf8", "latin1":
	default:
		errors = append(errors, fmt.Sprintf("invalid source encoding '%s': must be utf8 or latin1", c.SourceEncoding))
	}

	if c.SourceBackend == "files" || c.SourceBackend == "http" {
		if c.RegistryPath == "" {
			errors = append(errors, "registry path cannot be empty")
		}
	}

	switch c.SourceBackend {
	case "files":
		if c.CollectionsPath == "" {
			errors = append(errors, "collections path cannot be empty when using files backend")
		}
	case "http":
		if c.CollectionsURL == "" {
			errors = append(errors, "COLLECTIONS_URL is required when using http backend")
		} else if u, err := url.Parse(c.CollectionsURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid collections URL '%s': %v", c.CollectionsURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid collections URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 10 minutes", c.FetchTimeout))
	}

	if c.SeriesCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid series cache size %d: must be at least 1", c.SeriesCacheSize))
	}
	if c.SeriesCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid series cache TTL %v: must be at least 1 second", c.SeriesCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
