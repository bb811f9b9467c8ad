package shape

import (
	"errors"
	"strconv"
	"strings"

	"github.com/usestring/hyper-mcp/pkg/textquery"
)

// CSVOutline describes a CSV object's columns.
type CSVOutline struct {
	HasHeader bool        `json:"has_header"`
	Rows      int         `json:"rows"` // data rows, header excluded
	Columns   []CSVColumn `json:"columns"`
	Ragged    bool        `json:"ragged,omitempty"` // rows differ in width
}

// CSVColumn summarizes one column over the sampled rows.
type CSVColumn struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // integer, number, boolean, string or empty
	Empty    int      `json:"empty,omitempty"`
	Distinct int      `json:"distinct"`
	Examples []string `json:"examples,omitempty"`
}

func inspectCSV(body []byte, maxRows int) (*CSVOutline, error) {
	records, err := textquery.ReadCSV(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty CSV")
	}

	out := &CSVOutline{HasHeader: looksLikeHeader(records)}
	width := 0
	for _, r := range records {
		if width != 0 && len(r) != width {
			out.Ragged = true
		}
		width = max(width, len(r))
	}

	data := records
	var header []string
	if out.HasHeader {
		header, data = records[0], records[1:]
	}
	out.Rows = len(data)
	if maxRows > 0 && len(data) > maxRows {
		data = data[:maxRows]
	}

	for i := 0; i < width; i++ {
		name := "column_" + strconv.Itoa(i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			name = strings.TrimSpace(header[i])
		}
		col := CSVColumn{Name: name}
		seen := make(map[string]bool)
		var values []string
		for _, r := range data {
			v := ""
			if i < len(r) {
				v = strings.TrimSpace(r[i])
			}
			if v == "" {
				col.Empty++
				continue
			}
			values = append(values, v)
			if !seen[v] {
				seen[v] = true
				if len(col.Examples) < 3 {
					col.Examples = append(col.Examples, v)
				}
			}
		}
		col.Distinct = len(seen)
		col.Type = columnType(values)
		out.Columns = append(out.Columns, col)
	}
	return out, nil
}

// looksLikeHeader reports whether the first record names the columns: it
// has no numeric cells while some later record does in the same column,
// or (for all-text files) its cells are unique and non-empty.
func looksLikeHeader(records [][]string) bool {
	first := records[0]
	for _, cell := range first {
		if isNumber(strings.TrimSpace(cell)) {
			return false
		}
	}
	if len(records) == 1 {
		return false
	}
	for _, r := range records[1:] {
		for i, cell := range r {
			if i < len(first) && isNumber(strings.TrimSpace(cell)) {
				return true
			}
		}
	}
	seen := make(map[string]bool, len(first))
	for _, cell := range first {
		cell = strings.TrimSpace(cell)
		if cell == "" || seen[cell] {
			return false
		}
		seen[cell] = true
	}
	return true
}

func columnType(values []string) string {
	if len(values) == 0 {
		return "empty"
	}
	integer, number, boolean := true, true, true
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			integer = false
		}
		if !isNumber(v) {
			number = false
		}
		if _, err := strconv.ParseBool(strings.ToLower(v)); err != nil {
			boolean = false
		}
	}
	switch {
	case integer:
		return "integer"
	case number:
		return "number"
	case boolean:
		return "boolean"
	}
	return "string"
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
