package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cartorios/internal/core"
)

// DecodeOffices reads a registry CSV stream into offices. The header
// row must contain every registry column; a missing column is fatal
// rather than silently skipped, since downstream filters cannot work
// without it.
func DecodeOffices(r io.Reader) ([]core.Office, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	return OfficesFromTable(header, rows)
}

// OfficesFromTable maps an already-decoded table (header plus data
// rows) to offices. Shared between the CSV readers and the Sheets
// source, which yields its values as a matrix rather than a stream.
func OfficesFromTable(header []string, rows [][]string) ([]core.Office, error) {
	cols, err := requireColumns(header, ColCNS, ColUF, ColCity, ColName, ColStatus, ColType)
	if err != nil {
		return nil, err
	}

	offices := make([]core.Office, 0, len(rows))
	for _, row := range rows {
		o := core.Office{
			CNS:    field(row, cols[ColCNS]),
			UF:     field(row, cols[ColUF]),
			City:   field(row, cols[ColCity]),
			Name:   field(row, cols[ColName]),
			Status: field(row, cols[ColStatus]),
			Type:   field(row, cols[ColType]),
		}
		if o.CNS == "" {
			continue
		}
		offices = append(offices, o)
	}
	return offices, nil
}

// DecodeCollections reads a collections CSV stream into raw rows.
// Period and amount stay textual; core.Clean decides what survives.
func DecodeCollections(r io.Reader) ([]core.RawCollection, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	return CollectionsFromTable(header, rows)
}

// CollectionsFromTable maps an already-decoded table to raw rows.
func CollectionsFromTable(header []string, rows [][]string) ([]core.RawCollection, error) {
	cols, err := requireColumns(header, ColCNS, ColPeriod, ColAmount)
	if err != nil {
		return nil, err
	}

	raw := make([]core.RawCollection, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, core.RawCollection{
			CNS:    field(row, cols[ColCNS]),
			Period: field(row, cols[ColPeriod]),
			Amount: field(row, cols[ColAmount]),
		})
	}
	return raw, nil
}

// readTable decodes a whole CSV stream, returning data rows and the
// header row. Ragged rows are tolerated (FieldsPerRecord = -1); missing
// cells read as empty and fail row cleaning instead of aborting the
// load.
func readTable(r io.Reader) ([][]string, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decode csv: %v", ErrSourceUnavailable, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%w: empty table", ErrSourceUnavailable)
	}
	header := all[0]
	// Strip the UTF-8 BOM some exports prepend to the first header.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return all[1:], header, nil
}

// requireColumns maps required header names to their indices.
// Comparison is exact and case-sensitive.
func requireColumns(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cols := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSourceUnavailable, strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
