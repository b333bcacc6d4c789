// Package fetcher reads source spreadsheet exports from the raw data
// directory.
package fetcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ErrNoFiles is returned when the raw directory exists but holds no
// spreadsheet exports.
var ErrNoFiles = eris.New("fetcher: no xlsx files found")

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int // default 0
	SkipRows   int // number of header rows to skip
}

// ReadXLSX reads an XLSX file and returns all rows as string slices, after
// skipping the configured header rows.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open xlsx")
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("fetcher: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	sheet := f.Sheets[opts.SheetIndex]

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}

		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

// LatestXLSX returns the newest .xlsx file in dir by modification time.
// A missing directory is reported the same way as an empty one, so callers
// can treat both as "no input this run".
func LatestXLSX(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoFiles
		}
		return "", eris.Wrapf(err, "fetcher: read dir %s", dir)
	}

	var latest string
	var latestMod int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".xlsx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().UnixNano() > latestMod {
			latest = e.Name()
			latestMod = info.ModTime().UnixNano()
		}
	}

	if latest == "" {
		return "", ErrNoFiles
	}
	return filepath.Join(dir, latest), nil
}
