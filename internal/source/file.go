package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileReader reads local .csv and .xlsx files.
// For spreadsheets the range may name a sheet ("Sheet1!A1:B9"); CSV files ignore the sheet part.
type FileReader struct{}

// NewFileReader returns a FileReader
func NewFileReader() *FileReader {
	return &FileReader{}
}

// ReadValues reads path and crops the result to rng
func (r *FileReader) ReadValues(ctx context.Context, path, rng string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &UnavailableError{SourceID: path, Range: rng, Message: "file not found", Err: err}
	}

	sheet, area, err := parseRange(rng)
	if err != nil {
		return nil, err
	}

	var values [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		values, err = readCSV(path)
	case ".xlsx", ".xlsm":
		values, err = readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return area.crop(values), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseCSV(f)
}

// parseCSV reads every record; rows may differ in length
func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	values, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return values, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// area is a 1-based inclusive rectangle; zero bounds are open
type area struct {
	col1, row1 int
	col2, row2 int
}

// parseRange splits A1 notation into an optional sheet name and an area.
// "Sheet1!A1:B", "Sheet1", "A1:B9", "A:B" and "" are accepted.
func parseRange(rng string) (string, area, error) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return "", area{}, nil
	}

	sheet, cells, found := strings.Cut(rng, "!")
	if !found {
		if a, err := parseArea(rng); err == nil {
			return "", a, nil
		}
		return strings.Trim(rng, "'"), area{}, nil
	}

	a, err := parseArea(cells)
	if err != nil {
		return "", area{}, fmt.Errorf("invalid range %q: %w", rng, err)
	}
	return strings.Trim(sheet, "'"), a, nil
}

func parseArea(s string) (area, error) {
	from, to, hasTo := strings.Cut(s, ":")
	c1, r1, err := parseCorner(from)
	if err != nil {
		return area{}, err
	}
	if !hasTo {
		return area{col1: c1, row1: r1, col2: c1, row2: r1}, nil
	}
	c2, r2, err := parseCorner(to)
	if err != nil {
		return area{}, err
	}
	return area{col1: c1, row1: r1, col2: c2, row2: r2}, nil
}

// parseCorner parses "B3", "B" (whole column) or "3" (whole row)
func parseCorner(s string) (col, row int, err error) {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "$", "")))
	if s == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	split := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	switch split {
	case -1:
		col, err = excelize.ColumnNameToNumber(s)
		return col, 0, err
	case 0:
		_, err = fmt.Sscanf(s, "%d", &row)
		return 0, row, err
	default:
		return excelize.CellNameToCoordinates(s)
	}
}

func (a area) crop(values [][]string) [][]string {
	if a == (area{}) {
		return values
	}

	first, last := 0, len(values)
	if a.row1 > 0 {
		first = a.row1 - 1
	}
	if a.row2 > 0 && a.row2 < last {
		last = a.row2
	}
	if first >= last {
		return [][]string{}
	}

	out := make([][]string, 0, last-first)
	for _, row := range values[first:last] {
		lo, hi := 0, len(row)
		if a.col1 > 0 {
			lo = a.col1 - 1
		}
		if a.col2 > 0 && a.col2 < hi {
			hi = a.col2
		}
		if lo >= hi {
			out = append(out, []string{})
			continue
		}
		out = append(out, row[lo:hi])
	}
	return out
}
