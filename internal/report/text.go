// internal/report/text.go
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"commit-evidence/internal/model"
)

var textReport = template.Must(template.New("log").Funcs(template.FuncMap{
	"indent": func(s string) string { return strings.ReplaceAll(s, "\n", "\n    ") },
}).Parse(`Commit evidence for {{.Author}} in {{.Repository}}
{{len .Commits}} commit(s), oldest first

{{range .Commits -}}
{{.Date}}  {{.ID}}  {{.CommitterName}}
    {{indent .LongExplanation}}
{{- if .LinkURL}}
    {{.LinkURL}}
{{- end}}

{{end -}}
`))

// TextWriter writes a chronological plain-text log per target.
type TextWriter struct {
	dir    string
	logger *slog.Logger
}

// NewTextWriter creates a writer that places files in dir.
func NewTextWriter(dir string, logger *slog.Logger) *TextWriter {
	return &TextWriter{dir: dir, logger: logger}
}

// Path returns the text file used for t.
func (w *TextWriter) Path(t Target) string {
	return filepath.Join(w.dir, t.FileStem()+".txt")
}

// Write replaces the target's log with the given commits.
func (w *TextWriter) Write(_ context.Context, t Target, commits []model.Commit) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(t)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteText(f, t, commits); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Info("Wrote text evidence", "path", path, "count", len(commits))
	return f.Close()
}

// WriteText renders commits oldest first. The input slice is not reordered.
func WriteText(out io.Writer, t Target, commits []model.Commit) error {
	ordered := slices.Clone(commits)
	slices.SortStableFunc(ordered, func(a, b model.Commit) int {
		return a.CommittedAt.Compare(b.CommittedAt)
	})

	return textReport.Execute(out, struct {
		Author     string
		Repository string
		Commits    []model.Commit
	}{
		Author:     t.Author,
		Repository: t.String(),
		Commits:    ordered,
	})
}
