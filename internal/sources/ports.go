// Package sources defines the inbound data ports: where the office
// registry and the collections table come from. Adapters live in the
// subpackages (local CSV files, a remote CSV export, Google Sheets).
package sources

import (
	"context"
	"errors"

	"cartorios/internal/core"
)

// ErrSourceUnavailable marks a registry or collections source that
// could not be fetched or is structurally unusable (missing required
// columns). Terminal for the current request; there is no retry or
// stale-cache fallback.
var ErrSourceUnavailable = errors.New("source unavailable")

// Required column headers, exact and case-sensitive.
const (
	ColCNS    = "CNS"
	ColUF     = "UF"
	ColCity   = "Cidade"
	ColName   = "Denominação"
	ColStatus = "Status"
	ColType   = "Tipo"

	ColPeriod = "Dat. início do período"
	ColAmount = "Valor arrecadação"
)

type (
	// RegistryReader produces the set of known offices.
	RegistryReader interface {
		ReadOffices(ctx context.Context) ([]core.Office, error)
	}

	// CollectionsReader produces the raw collections rows, still
	// uncleaned. Cleaning is the caller's job (core.Clean).
	CollectionsReader interface {
		ReadCollections(ctx context.Context) ([]core.RawCollection, error)
	}
)
