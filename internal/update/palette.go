package update

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todod/internal/commands"
	"github.com/sandeepkv93/todod/internal/export"
	"github.com/sandeepkv93/todod/internal/filter"
	"github.com/sandeepkv93/todod/internal/session"
	"github.com/sandeepkv93/todod/internal/views"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m = m.executePaletteCommand(m.commandInput.Value())
	default:
		m.commandInput = applyInputKey(m.commandInput, msg)
	}
	return m
}

func (m *Model) closePalette() {
	if m.Mode == ModePalette {
		m.Mode = ModeBrowse
	}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand(raw string) Model {
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	ctx := context.Background()
	prevNotice := m.Snap.Notice
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: m.createTask,
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			text := a.Text
			if err := m.applyFilter(filter.Partial{Search: &text}); err != nil {
				return commands.Result{}, err
			}
			if strings.TrimSpace(text) == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("search %q: %d match(es)", text, len(m.Snap.Visible))}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			err := m.applyFilter(filter.Partial{Status: a.Status, Priority: a.Priority, Group: a.Group})
			return m.filterResult(err)
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			key := a.Key
			return m.filterResult(m.applyFilter(filter.Partial{Sort: &key}))
		},
		Today: func(a commands.TodayArgs) (commands.Result, error) {
			on := !m.Snap.Filter.TodayOnly
			if a.On != nil {
				on = *a.On
			}
			return m.filterResult(m.applyFilter(filter.Partial{TodayOnly: &on}))
		},
		Group: func(a commands.GroupArgs) (commands.Result, error) {
			var snap session.Snapshot
			var err error
			if a.Action == commands.GroupAdd {
				snap, err = m.Session.AddGroup(ctx, a.Name)
			} else {
				snap, err = m.Session.RemoveGroup(ctx, a.Name)
			}
			if err != nil {
				return commands.Result{}, err
			}
			m.applySnapshot(snap)
			return commands.Result{Message: fmt.Sprintf("groups: %s", strings.Join(snap.Groups, ", "))}, nil
		},
		Clear: func() (commands.Result, error) {
			before := m.Snap.Stats.Completed
			snap, err := m.Session.ClearCompleted(ctx)
			if err != nil {
				return commands.Result{}, err
			}
			m.applySnapshot(snap)
			return commands.Result{Message: fmt.Sprintf("cleared %d completed task(s)", before-snap.Stats.Completed)}, nil
		},
		Export: m.exportVisible,
		Reset: func() (commands.Result, error) {
			m.applySnapshot(m.Session.ResetFilter())
			return commands.Result{Message: "filters reset: " + m.Snap.Filter.String()}, nil
		},
	})
	if err != nil {
		m.log.Debug("palette command failed", "command", cmd.Type, "error", err)
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	// A persist failure raised by this command outranks the result text.
	if n := m.Snap.Notice; n == nil || n == prevNotice || n.Level != session.NoticeError {
		m.Status = StatusBar{Text: res.Message}
	}
	return m
}

func (m *Model) applyFilter(p filter.Partial) error {
	snap, err := m.Session.SetFilter(p)
	if err != nil {
		return err
	}
	m.applySnapshot(snap)
	return nil
}

func (m *Model) filterResult(err error) (commands.Result, error) {
	if err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: "filters: " + m.Snap.Filter.String()}, nil
}

// exportVisible writes the visible list to a file when a path is given and
// otherwise opens it in the preview pane.
func (m *Model) exportVisible(a commands.ExportArgs) (commands.Result, error) {
	opts := export.Options{
		Title: fmt.Sprintf("%s's tasks", m.Session.Account().Username),
		Today: m.Snap.Today,
	}
	tasks := m.Snap.Visible
	if a.Path != "" {
		if err := export.WriteFile(a.Path, a.Format, tasks, opts); err != nil {
			m.log.Error("export failed", "path", a.Path, "error", err)
			return commands.Result{}, err
		}
		m.log.Info("exported tasks", "path", a.Path, "format", a.Format, "count", len(tasks))
		return commands.Result{Message: fmt.Sprintf("exported %d task(s) to %s", len(tasks), a.Path)}, nil
	}

	var body string
	if a.Format == export.FormatMarkdown {
		body = views.RenderMarkdown(export.Markdown(tasks, opts), m.preview.Width)
	} else {
		var buf bytes.Buffer
		if err := export.Write(&buf, a.Format, tasks, opts); err != nil {
			return commands.Result{}, err
		}
		body = buf.String()
	}
	m.preview.SetContent(body)
	m.preview.GotoTop()
	m.PreviewTitle = fmt.Sprintf("export preview (%s)", a.Format)
	m.Mode = ModePreview
	return commands.Result{Message: fmt.Sprintf("previewing %d task(s) as %s", len(tasks), a.Format)}, nil
}
