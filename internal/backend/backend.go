// Package backend selects where the registry and collections tables
// come from: local CSV files, a remote CSV export, or a Google
// spreadsheet.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"cartorios/internal/config"
	"cartorios/internal/sources"
	"cartorios/internal/sources/csvfile"
	"cartorios/internal/sources/gsheet"
	"cartorios/internal/sources/httpcsv"
)

// Type is the source backend type.
type Type string

const (
	FilesBackend  Type = "files"
	HTTPBackend   Type = "http"
	SheetsBackend Type = "sheets"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case FilesBackend, HTTPBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Sources pairs the two readers a backend provides.
type Sources struct {
	Registry    sources.RegistryReader
	Collections sources.CollectionsReader
}

// Factory creates source pairs based on configuration
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the source pair for the configured backend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (Sources, error) {
	t := Type(cfg.SourceBackend)
	if !t.IsValid() {
		return Sources{}, fmt.Errorf("invalid source backend: %s", cfg.SourceBackend)
	}

	enc := csvfile.Encoding(cfg.SourceEncoding)
	if !enc.Valid() {
		return Sources{}, fmt.Errorf("invalid source encoding: %s", cfg.SourceEncoding)
	}

	switch t {
	case FilesBackend:
		f.logger.Info("Initialized files backend",
			"registry", cfg.RegistryPath,
			"collections", cfg.CollectionsPath,
			"encoding", cfg.SourceEncoding)
		return Sources{
			Registry:    csvfile.NewRegistry(cfg.RegistryPath, enc),
			Collections: csvfile.NewCollections(cfg.CollectionsPath, enc),
		}, nil

	case HTTPBackend:
		f.logger.Info("Initialized http backend",
			"registry", cfg.RegistryPath,
			"collections_url", cfg.CollectionsURL,
			"timeout", cfg.FetchTimeout)
		return Sources{
			Registry:    csvfile.NewRegistry(cfg.RegistryPath, enc),
			Collections: httpcsv.NewCollections(cfg.CollectionsURL, cfg.FetchTimeout),
		}, nil

	default: // SheetsBackend
		cli, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleRegistrySheet, cfg.GoogleCollectionsSheet)
		if err != nil {
			return Sources{}, fmt.Errorf("initialize sheets backend: %w", err)
		}
		f.logger.Info("Initialized sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return Sources{Registry: cli, Collections: cli}, nil
	}
}
