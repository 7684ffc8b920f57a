// Package csvfile reads the registry and collections tables from local
// CSV files. Brazilian government exports often ship as ISO8859-1, so
// both readers can optionally decode Latin-1 on the way in.
package csvfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"cartorios/internal/core"
	"cartorios/internal/sources"
)

// Encoding selects how file bytes are decoded.
type Encoding string

const (
	UTF8   Encoding = "utf8"
	Latin1 Encoding = "latin1"
)

// Valid reports whether the encoding name is one this package supports.
func (e Encoding) Valid() bool {
	return e == UTF8 || e == Latin1
}

// Registry reads offices from a local CSV file.
type Registry struct {
	path     string
	encoding Encoding
}

// Collections reads raw collections rows from a local CSV file.
type Collections struct {
	path     string
	encoding Encoding
}

var (
	_ sources.RegistryReader    = (*Registry)(nil)
	_ sources.CollectionsReader = (*Collections)(nil)
)

func NewRegistry(path string, encoding Encoding) *Registry {
	return &Registry{path: path, encoding: encoding}
}

func NewCollections(path string, encoding Encoding) *Collections {
	return &Collections{path: path, encoding: encoding}
}

// ReadOffices implements sources.RegistryReader.
func (r *Registry) ReadOffices(ctx context.Context) ([]core.Office, error) {
	f, err := open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	offices, err := sources.DecodeOffices(decode(f, r.encoding))
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", r.path, err)
	}
	slog.InfoContext(ctx, "Registry loaded", "source", r.path, "offices", len(offices))
	return offices, nil
}

// ReadCollections implements sources.CollectionsReader.
func (c *Collections) ReadCollections(ctx context.Context) ([]core.RawCollection, error) {
	f, err := open(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := sources.DecodeCollections(decode(f, c.encoding))
	if err != nil {
		return nil, fmt.Errorf("collections %s: %w", c.path, err)
	}
	slog.InfoContext(ctx, "Collections loaded", "source", c.path, "rows", len(raw))
	return raw, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", sources.ErrSourceUnavailable, path, err)
	}
	return f, nil
}

func decode(r io.Reader, enc Encoding) io.Reader {
	if enc == Latin1 {
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	return r
}
