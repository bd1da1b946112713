// Package export writes a task list as markdown, JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/todod/internal/collection"
	"github.com/sandeepkv93/todod/internal/model"
)

var ErrUnknownFormat = errors.New("export: unknown format")

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

var Formats = []Format{FormatMarkdown, FormatJSON, FormatCSV}

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Extension is the usual file suffix, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	}
	return ""
}

type Options struct {
	// Title heads the markdown document.
	Title string
	// Today marks overdue tasks in markdown; zero disables the marker.
	Today time.Time
}

func Write(w io.Writer, format Format, tasks []model.Task, opts Options) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(tasks, opts))
		return err
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatCSV:
		return writeCSV(w, tasks)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes through a temp file and renames it into place so a failed
// export never leaves a truncated file behind.
func WriteFile(path string, format Format, tasks []model.Task, opts Options) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("export: create file: %w", err)
	}
	if err := Write(f, format, tasks, opts); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("export: close file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Markdown renders a checklist grouped by task group, in input order within
// each group. Ungrouped tasks come last.
func Markdown(tasks []model.Task, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "Tasks"
	}
	stats := collection.Summarize(tasks)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d total, %d completed, %d pending (%d%% done)\n", stats.Total, stats.Completed, stats.Pending, stats.Percent)
	if len(tasks) == 0 {
		b.WriteString("\n_No tasks._\n")
		return b.String()
	}

	order := make([]string, 0)
	byGroup := make(map[string][]model.Task)
	for _, t := range tasks {
		if _, seen := byGroup[t.Group]; !seen && t.Group != "" {
			order = append(order, t.Group)
		}
		byGroup[t.Group] = append(byGroup[t.Group], t)
	}
	if len(byGroup[""]) > 0 {
		order = append(order, "")
	}

	for _, group := range order {
		heading := group
		if heading == "" {
			heading = "Ungrouped"
		}
		fmt.Fprintf(&b, "\n## %s\n\n", heading)
		for _, t := range byGroup[group] {
			b.WriteString(markdownLine(t, opts.Today))
		}
	}
	return b.String()
}

func markdownLine(t model.Task, today time.Time) string {
	box := " "
	if t.Completed {
		box = "x"
	}
	parts := []string{strings.ToLower(string(t.Priority))}
	if t.DueDate != nil {
		due := "due " + model.FormatDate(t.DueDate)
		if !today.IsZero() && t.IsOverdue(today) {
			due += " **overdue**"
		}
		parts = append(parts, due)
	}
	return fmt.Sprintf("- [%s] %s _(%s)_\n", box, escapeMarkdown(t.Title), strings.Join(parts, ", "))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func writeJSON(w io.Writer, tasks []model.Task) error {
	records := make([]model.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.Record())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

var csvHeader = []string{"id", "title", "completed", "priority", "due_date", "group", "created_at", "updated_at"}

func writeCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			strconv.FormatBool(t.Completed),
			string(t.Priority),
			model.FormatDate(t.DueDate),
			t.Group,
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}
