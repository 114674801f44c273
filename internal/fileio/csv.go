package fileio

import (
	"encoding/csv"
	"errors"
	"io"
)

// readCSV reads a CSV table, converting it to UTF-8 first.
func readCSV(r io.Reader, headerRow int) ([]map[string]string, error) {
	dec, _ := UTF8Reader(r)

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}
