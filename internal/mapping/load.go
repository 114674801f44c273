// Package mapping builds the FieldMapping table from the built-in defaults or
// from a file: YAML, JSON, or a CSV/XLS/XLSX sheet with "field" and "label"
// columns.
package mapping

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"autofill-service/internal/autofill/model"
	"autofill-service/internal/fileio"
)

const (
	columnField = "field"
	columnLabel = "label"

	// labelSep joins several labels in one sheet cell.
	labelSep = "|"
)

var ErrUnsupportedFormat = fileio.ErrUnsupportedFormat

// Load reads a mapping file. An empty path yields Default().
func Load(path string) (model.FieldMapping, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return model.FieldMapping{}, fmt.Errorf("open mapping: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read parses r according to the extension of filename.
func Read(r io.Reader, filename string) (model.FieldMapping, error) {
	var (
		table map[string][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(r).Decode(&table)
		if err == io.EOF {
			err = nil
		}
	case ".json":
		err = json.NewDecoder(r).Decode(&table)
	default:
		table, err = readSheet(r, filename)
	}
	if err != nil {
		return model.FieldMapping{}, fmt.Errorf("read mapping %s: %w", filename, err)
	}
	return model.NewFieldMapping(table), nil
}

func readSheet(r io.Reader, filename string) (map[string][]string, error) {
	recs, err := fileio.ReadRecords(r, filename, 1)
	if err != nil {
		return nil, err
	}
	table := make(map[string][]string)
	for i, rec := range recs {
		field, ok := rec[columnField]
		if !ok {
			return nil, fmt.Errorf("row %d: missing %q column", i+2, columnField)
		}
		if field == "" {
			continue
		}
		for _, l := range strings.Split(rec[columnLabel], labelSep) {
			table[field] = append(table[field], l)
		}
	}
	return table, nil
}
