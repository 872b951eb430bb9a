package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcap107/caparezzology/internal/logging"
	"github.com/rcap107/caparezzology/internal/model"
)

// CSVHeader is the fixed header of the songs CSV.
var CSVHeader = []string{"title", "url", "primary_artist"}

// Writer persists song metadata and lyrics.
type Writer struct {
	logger *logging.Logger
}

// NewWriter creates a Writer.
func NewWriter(logger *logging.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteSongsCSV writes one row per record under the fixed header. With no
// records it logs and returns false without touching path.
func (w *Writer) WriteSongsCSV(path string, records []model.SongRecord) (bool, error) {
	if len(records) == 0 {
		w.logger.Warnf("No songs to save; leaving %s untouched", path)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create parent dirs: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("create file %s: %w", path, err)
	}
	defer out.Close()

	cw := csv.NewWriter(out)
	cw.UseCRLF = true
	if err := cw.Write(CSVHeader); err != nil {
		return false, fmt.Errorf("write header %s: %w", path, err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Title, r.URL, r.PrimaryArtist}); err != nil {
			return false, fmt.Errorf("write row %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return false, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", path, err)
	}

	w.logger.Infof("Saved %d songs to %s", len(records), path)
	return true, nil
}

// WriteLyrics writes body to path verbatim, creating parent directories and
// replacing any existing file.
func (w *Writer) WriteLyrics(body, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dirs: %w", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

// ReadSongsCSV reads records from a songs CSV, addressing columns by header
// name. The url column is required.
func ReadSongsCSV(path string) ([]model.SongRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols["url"]; !ok {
		return nil, fmt.Errorf("read %s: missing url column", path)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []model.SongRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %s: %w", path, err)
		}
		records = append(records, model.SongRecord{
			Title:         field(row, "title"),
			URL:           field(row, "url"),
			PrimaryArtist: field(row, "primary_artist"),
		})
	}
	return records, nil
}
