// internal/report/csv.go
package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"commit-evidence/internal/model"
)

// evidenceKind is the fixed value of the Evidence column.
const evidenceKind = "Code commit"

// CSVHeader is the column layout expected by the evidence tracker import.
var CSVHeader = []string{
	"Start Date", "End Date", "Work package", "Evidence", "Short Description",
	"Person", "Long description", "File", "Evidence URL",
}

// CSVWriter appends commits to one CSV calendar file per target.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer that places files in dir.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{dir: dir, logger: logger}
}

// Path returns the CSV file used for t.
func (w *CSVWriter) Path(t Target) string {
	return filepath.Join(w.dir, t.FileStem()+".csv")
}

// Write appends commits to the target's file, writing the header only when
// the file is created.
func (w *CSVWriter) Write(_ context.Context, t Target, commits []model.Commit) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(t)
	_, err := os.Stat(path)
	isNew := errors.Is(err, fs.ErrNotExist)
	if err != nil && !isNew {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, commits, isNew); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Info("Wrote CSV evidence", "path", path, "count", len(commits))
	return f.Close()
}

// WriteCSV encodes commits as evidence rows, optionally preceded by the header.
func WriteCSV(out io.Writer, commits []model.Commit, header bool) error {
	cw := csv.NewWriter(out)
	if header {
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
	}
	for _, c := range commits {
		if err := cw.Write(csvRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(c model.Commit) []string {
	return []string{
		c.Date,
		c.Date,
		"",
		evidenceKind,
		c.ShortExplanation,
		c.CommitterName,
		c.CommitMessage,
		"",
		c.LinkURL,
	}
}
