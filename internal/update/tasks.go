package update

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todod/internal/collection"
	"github.com/sandeepkv93/todod/internal/commands"
	"github.com/sandeepkv93/todod/internal/filter"
	"github.com/sandeepkv93/todod/internal/model"
	"github.com/sandeepkv93/todod/internal/session"
)

var priorityCycle = []model.Priority{"", model.PriorityHigh, model.PriorityMedium, model.PriorityLow}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "?":
		m.HelpVisible = !m.HelpVisible
	case "esc":
		m.HelpVisible = false
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "/":
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case "a":
		m.openForm(ModeAdd, "add> ", "")
	case "e":
		if t, ok := m.selectedTask(); ok {
			m.openForm(ModeEdit, "edit> ", t.Title)
		}
	case " ", "space":
		if id := m.SelectedTaskID; id != "" {
			snap, _ := m.Session.ToggleTask(ctx, id)
			m.applySnapshot(snap)
		}
	case "d":
		if id := m.SelectedTaskID; id != "" {
			m.PendingDeleteID = id
			m.Mode = ModeConfirmDelete
		}
	case "K", "shift+up":
		m.moveSelected(-1)
	case "J", "shift+down":
		m.moveSelected(1)
	case "f":
		next := cycle(filter.Statuses, m.Snap.Filter.Status)
		m.setFilter(filter.Partial{Status: &next})
	case "p":
		next := cycle(priorityCycle, m.Snap.Filter.Priority)
		m.setFilter(filter.Partial{Priority: &next})
	case "g":
		next := cycle(append([]string{""}, m.Snap.Groups...), m.Snap.Filter.Group)
		m.setFilter(filter.Partial{Group: &next})
	case "s":
		next := cycle(filter.SortKeys, m.Snap.Filter.Sort)
		m.setFilter(filter.Partial{Sort: &next})
	case "t":
		next := !m.Snap.Filter.TodayOnly
		m.setFilter(filter.Partial{TodayOnly: &next})
	}
	return m, nil
}

// cycle returns the option after current, wrapping around. Unknown values
// restart at the first option.
func cycle[T comparable](options []T, current T) T {
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

func (m *Model) moveCursor(delta int) {
	if len(m.Snap.Visible) == 0 {
		return
	}
	m.Cursor = max(0, min(len(m.Snap.Visible)-1, m.Cursor+delta))
	m.SelectedTaskID = m.Snap.Visible[m.Cursor].ID
}

func (m Model) selectedTask() (model.Task, bool) {
	for _, t := range m.Snap.Visible {
		if t.ID == m.SelectedTaskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m *Model) moveSelected(delta int) {
	if m.SelectedTaskID == "" {
		return
	}
	if m.Snap.Filter.Sort != filter.SortManual {
		m.Status = StatusBar{Text: "reordering needs manual sort; press s to change sort", IsError: true}
		return
	}
	before, ok := session.MoveTarget(m.Snap.Visible, m.SelectedTaskID, delta)
	if !ok {
		return
	}
	snap, _ := m.Session.ReorderTask(context.Background(), m.SelectedTaskID, before)
	m.applySnapshot(snap)
}

func (m *Model) setFilter(p filter.Partial) {
	snap, err := m.Session.SetFilter(p)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.applySnapshot(snap)
	m.Status = StatusBar{Text: "filters: " + snap.Filter.String()}
}

func (m *Model) openForm(mode Mode, prompt, value string) {
	m.Mode = mode
	m.taskInput.Prompt = prompt
	m.taskInput.SetValue(value)
	m.taskInput.Focus()
}

func (m *Model) closeForm() {
	m.Mode = ModeBrowse
	m.taskInput.SetValue("")
	m.taskInput.Blur()
}

func (m Model) handleFormKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.Status = StatusBar{Text: "cancelled"}
		return m
	case "enter":
		return m.submitForm()
	}
	m.taskInput = applyInputKey(m.taskInput, msg)
	return m
}

// submitForm reads the input with the quick-add syntax. A failed submit keeps
// the form open so the text can be fixed.
func (m Model) submitForm() Model {
	cmd, err := commands.Parse("add " + m.taskInput.Value())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if m.Mode == ModeAdd {
		if _, err := m.createTask(*cmd.Add); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
	} else if err := m.editSelected(*cmd.Add); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.closeForm()
	return m
}

func (m Model) now() time.Time {
	return m.deps.Session.Now()
}

func (m Model) resolveDue(raw string) (*time.Time, error) {
	if strings.EqualFold(raw, commands.DueNone) {
		return nil, nil
	}
	return model.ResolveDate(raw, m.now())
}

// createTask registers an unknown group before adding the task so the group
// filter can pick it.
func (m *Model) createTask(a commands.AddArgs) (commands.Result, error) {
	ctx := context.Background()
	if a.Group == commands.GroupNone {
		a.Group = ""
	}
	due, err := m.resolveDue(a.Due)
	if err != nil {
		return commands.Result{}, err
	}
	if err := m.ensureGroup(a.Group); err != nil {
		return commands.Result{}, err
	}
	seen := make(map[string]bool, len(m.Snap.Visible))
	for _, t := range m.Snap.Visible {
		seen[t.ID] = true
	}
	snap, err := m.Session.CreateTask(ctx, collection.Fields{
		Title:    a.Title,
		Priority: a.Priority,
		DueDate:  due,
		Group:    a.Group,
	})
	if err != nil {
		return commands.Result{}, err
	}
	for _, t := range snap.Visible {
		if !seen[t.ID] {
			m.SelectedTaskID = t.ID
			break
		}
	}
	m.applySnapshot(snap)
	return commands.Result{Message: fmt.Sprintf("added %q", strings.TrimSpace(a.Title))}, nil
}

func (m *Model) ensureGroup(name string) error {
	if name == "" || slices.Contains(m.Snap.Groups, name) {
		return nil
	}
	snap, err := m.Session.AddGroup(context.Background(), name)
	if err != nil {
		return err
	}
	m.applySnapshot(snap)
	return nil
}

func (m *Model) editSelected(a commands.AddArgs) error {
	id := m.SelectedTaskID
	if id == "" {
		return errors.New("no task selected")
	}
	title := a.Title
	patch := collection.Patch{Title: &title}
	if a.Priority != "" {
		p := a.Priority
		patch.Priority = &p
	}
	switch a.Group {
	case "":
	case commands.GroupNone:
		none := ""
		patch.Group = &none
	default:
		if err := m.ensureGroup(a.Group); err != nil {
			return err
		}
		g := a.Group
		patch.Group = &g
	}
	if a.Due != "" {
		due, err := m.resolveDue(a.Due)
		if err != nil {
			return err
		}
		patch.SetDueDate = true
		patch.DueDate = due
	}
	snap, err := m.Session.EditTask(context.Background(), id, patch)
	if err != nil {
		return err
	}
	m.applySnapshot(snap)
	return nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	id := m.PendingDeleteID
	m.PendingDeleteID = ""
	m.Mode = ModeBrowse
	switch msg.String() {
	case "y", "Y":
		snap, _ := m.Session.DeleteTask(context.Background(), id)
		m.applySnapshot(snap)
	default:
		m.Status = StatusBar{Text: "delete cancelled"}
	}
	return m
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc", "q":
		m.Mode = ModeBrowse
		m.PreviewTitle = ""
	case "j", "down":
		m.preview.ScrollDown(1)
	case "k", "up":
		m.preview.ScrollUp(1)
	default:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		_ = cmd
	}
	return m
}
