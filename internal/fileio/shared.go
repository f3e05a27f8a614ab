// Package fileio reads uploaded agent spreadsheets (CSV/XLS/XLSX) into
// generic header->value rows. Freight agents send whatever their TMS
// exports, so everything stays stringly typed until the match layer picks
// columns by alias.
package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadAnyMaps picks a parser by file extension and returns data rows as
// map[header]value. headerRow is 1-based.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// headerNames — the header row's cells, with "Column N" filled in for blanks
// so no column is lost.
func headerNames(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = cleanCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps converts the cell grid to records keyed by header, skipping
// rows that are entirely empty.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = cleanCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// cleanCell — trim, drop embedded newlines and non-breaking spaces that
// Excel exports love to sprinkle into headers.
func cleanCell(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
