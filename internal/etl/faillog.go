package etl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// utf8BOM makes the CSV open cleanly in Excel with Korean text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FailureLog writes rows that could not be geocoded to a dated CSV so they
// can be inspected and fixed by hand. It never fails the batch: any problem
// writing the artifact is logged and swallowed.
type FailureLog struct {
	dir string
	log *zap.Logger
}

// NewFailureLog creates a failure log writing under dir.
func NewFailureLog(dir string) *FailureLog {
	return &FailureLog{
		dir: dir,
		log: zap.L().With(zap.String("component", "faillog")),
	}
}

// Write saves the header and rows as geocoding_fail_YYYYMMDD.csv (UTC date)
// and returns the file path, or "" when nothing was written.
func (f *FailureLog) Write(header []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		f.log.Warn("failure log dir", zap.Error(err))
		return ""
	}

	name := fmt.Sprintf("geocoding_fail_%s.csv", time.Now().UTC().Format("20060102"))
	path := filepath.Join(f.dir, name)

	file, err := os.Create(path)
	if err != nil {
		f.log.Warn("failure log create", zap.Error(err))
		return ""
	}
	defer file.Close() //nolint:errcheck

	if _, err := file.Write(utf8BOM); err != nil {
		f.log.Warn("failure log write", zap.Error(err))
		return ""
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		f.log.Warn("failure log write", zap.Error(err))
		return ""
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.log.Warn("failure log write", zap.Error(err))
			return ""
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.log.Warn("failure log flush", zap.Error(err))
		return ""
	}

	f.log.Info("unresolved rows saved", zap.String("path", path), zap.Int("rows", len(rows)))
	return path
}
