package update

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todod/internal/auth"
	"github.com/sandeepkv93/todod/internal/model"
	"github.com/sandeepkv93/todod/internal/scheduler"
	"github.com/sandeepkv93/todod/internal/session"
	"github.com/sandeepkv93/todod/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Scheduler != nil {
		return waitForRolloverCmd(m.Scheduler.C())
	}
	return nil
}

func waitForRolloverCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DayRolloverMsg{Event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Screen == ScreenLogin {
			return m.handleLoginKey(typed)
		}
		switch m.Mode {
		case ModePalette:
			return m.handlePaletteKey(typed), nil
		case ModeAdd, ModeEdit:
			return m.handleFormKey(typed), nil
		case ModeConfirmDelete:
			return m.handleConfirmKey(typed), nil
		case ModePreview:
			return m.handlePreviewKey(typed), nil
		}
		return m.handleBrowseKey(typed)
	case spinner.TickMsg:
		if m.Login.Pending {
			var cmd tea.Cmd
			m.authSpinner, cmd = m.authSpinner.Update(typed)
			return m, cmd
		}
	case AuthResultMsg:
		m.Login.Pending = false
		if typed.Err != nil {
			m.Login.Err = authErrorText(typed.Err)
			m.log.Info("authentication failed", "register", m.Login.Register, "error", typed.Err)
			return m, nil
		}
		m.startSession(typed.Account)
		return m, nil
	case DayRolloverMsg:
		if m.Session != nil {
			m.applySnapshot(m.Session.Snapshot())
			m.Status = StatusBar{Text: "new day: " + m.Snap.Today.Format(model.DateLayout)}
			m.log.Info("day rollover", "event", typed.Event.ID)
		}
		if m.Scheduler != nil {
			ev, err := m.Scheduler.ScheduleDayRollover(m.deps.Session.Now())
			if err != nil {
				m.log.Warn("schedule next rollover failed", "error", err)
			} else {
				m.log.Debug("rollover scheduled", "event", ev.ID, "at", ev.At, "pending", m.Scheduler.Pending())
			}
			return m, waitForRolloverCmd(m.Scheduler.C())
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Login.Pending {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		m.setLoginField(1 - m.Login.Field)
		return m, nil
	case "ctrl+r":
		m.Login.Register = !m.Login.Register
		m.Login.Err = ""
		return m, nil
	case "esc":
		m.Quitting = true
		return m, tea.Quit
	case "enter":
		if m.Login.Field == 0 {
			m.setLoginField(1)
			return m, nil
		}
		return m.submitLogin()
	}
	if m.Login.Field == 0 {
		m.usernameInput = applyInputKey(m.usernameInput, msg)
	} else {
		m.pinInput = applyInputKey(m.pinInput, msg)
	}
	return m, nil
}

func (m *Model) setLoginField(field int) {
	m.Login.Field = field
	if field == 0 {
		m.usernameInput.Focus()
		m.pinInput.Blur()
		return
	}
	m.pinInput.Focus()
	m.usernameInput.Blur()
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	username := m.usernameInput.Value()
	pin := m.pinInput.Value()
	register := m.Login.Register
	authn := m.deps.Auth
	if authn == nil {
		m.Login.Err = "authentication is not configured"
		return m, nil
	}
	m.Login.Pending = true
	m.Login.Err = ""
	authenticate := func() tea.Msg {
		ctx := context.Background()
		var acc auth.Account
		var err error
		if register {
			acc, err = authn.Register(ctx, username, pin)
		} else {
			acc, err = authn.Login(ctx, username, pin)
		}
		return AuthResultMsg{Account: acc, Err: err}
	}
	return m, tea.Batch(authenticate, m.authSpinner.Tick)
}

func authErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		return "unknown username or wrong PIN"
	case errors.Is(err, auth.ErrUserExists):
		return "that username is taken"
	case errors.Is(err, auth.ErrInvalidUsername):
		return "username must be 3-32 characters"
	case errors.Is(err, auth.ErrInvalidPIN):
		return "PIN must be 4-8 digits"
	default:
		return err.Error()
	}
}

func (m *Model) startSession(acc auth.Account) {
	sess, snap := session.Start(context.Background(), m.deps.Repo, acc, m.deps.Session)
	m.Session = sess
	m.Screen = ScreenTasks
	m.Mode = ModeBrowse
	m.Cursor = 0
	m.SelectedTaskID = ""
	m.pinInput.SetValue("")
	m.pinInput.Blur()
	m.usernameInput.Blur()
	m.applySnapshot(snap)
	if snap.Notice == nil {
		m.Status = StatusBar{Text: fmt.Sprintf("signed in as %s", acc.Username)}
	}
	if m.Scheduler != nil {
		ev, err := m.Scheduler.ScheduleDayRollover(m.deps.Session.Now())
		if err != nil {
			m.log.Warn("schedule rollover failed", "error", err)
		} else {
			m.log.Debug("rollover scheduled", "event", ev.ID, "at", ev.At, "pending", m.Scheduler.Pending())
		}
	}
}

// applySnapshot keeps the selection on the same task when it is still
// visible and otherwise clamps the cursor.
func (m *Model) applySnapshot(snap session.Snapshot) {
	m.Snap = snap
	if snap.Notice != nil {
		m.Status = StatusBar{Text: snap.Notice.Text, IsError: snap.Notice.Level == session.NoticeError}
	}
	for i, t := range snap.Visible {
		if t.ID == m.SelectedTaskID {
			m.Cursor = i
			return
		}
	}
	if m.Cursor >= len(snap.Visible) {
		m.Cursor = len(snap.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.SelectedTaskID = ""
	if len(snap.Visible) > 0 {
		m.SelectedTaskID = snap.Visible[m.Cursor].ID
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	if m.Screen == ScreenLogin {
		return views.RenderApp(views.AppData{
			Header: "todod",
			Body: views.RenderLoginPanel(views.LoginPanelData{
				Register:     m.Login.Register,
				UsernameView: m.usernameInput.View(),
				PINView:      m.pinInput.View(),
				Pending:      m.Login.Pending,
				SpinnerView:  m.authSpinner.View(),
				ErrorText:    m.Login.Err,
			}),
			Side:       m.renderHelpIfVisible(),
			StatusLine: status,
			IsError:    m.Status.IsError,
			Footer:     "keys: tab field | enter submit | ctrl+r switch mode | esc quit",
		})
	}

	side := m.renderHelpIfVisible()
	if m.Mode == ModePreview {
		side = views.RenderPreviewPanel(views.PreviewPanelData{Title: m.PreviewTitle, Body: m.preview.View()})
	}
	username := ""
	if m.Session != nil {
		username = m.Session.Account().Username
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("todod | user: %s | showing %d of %d | selected: %s", username, len(m.Snap.Visible), m.Snap.Stats.Total, m.SelectedTaskID),
		Body:       m.renderTaskPanel(),
		Side:       side,
		StatusLine: status,
		IsError:    m.Status.IsError,
		Footer:     "keys: a add | e edit | space toggle | d delete | K/J move | f/p/g/s/t filters | / cmd | ? help | q quit",
	})
}

func (m Model) renderTaskPanel() string {
	rows := make([]views.TaskRowData, 0, len(m.Snap.Visible))
	for _, t := range m.Snap.Visible {
		rows = append(rows, views.TaskRowData{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			Priority:  string(t.Priority),
			DueDate:   model.FormatDate(t.DueDate),
			Group:     t.Group,
			Overdue:   t.IsOverdue(m.Snap.Today),
			DueToday:  t.IsDueOn(m.Snap.Today),
		})
	}

	input := ""
	switch m.Mode {
	case ModeAdd, ModeEdit:
		input = m.taskInput.View()
	case ModePalette:
		input = views.RenderCommandPalette(true, m.commandInput.View())
	}
	confirm := ""
	if m.Mode == ModeConfirmDelete {
		if t, ok := m.selectedTask(); ok {
			confirm = fmt.Sprintf("delete %q? [y/n]", t.Title)
		}
	}

	stats := m.Snap.Stats
	return views.RenderTaskPanel(views.TaskPanelData{
		Username:     m.Session.Account().Username,
		Rows:         rows,
		SelectedID:   m.SelectedTaskID,
		FilterLine:   "filters: " + m.Snap.Filter.String(),
		StatsLine:    fmt.Sprintf("total %d | completed %d | pending %d | %d%% done", stats.Total, stats.Completed, stats.Pending, stats.Percent),
		ProgressView: m.doneProgress.ViewAs(float64(stats.Percent) / 100),
		NoTasks:      m.Snap.Empty,
		InputView:    input,
		Confirm:      confirm,
	})
}

// applyInputKey appends typed runes directly so input works regardless of
// cursor blink state; editing keys go through the component.
func applyInputKey(input textinput.Model, msg tea.KeyMsg) textinput.Model {
	switch msg.Type {
	case tea.KeyRunes:
		input.SetValue(input.Value() + string(msg.Runes))
		return input
	case tea.KeySpace:
		input.SetValue(input.Value() + " ")
		return input
	}
	var cmd tea.Cmd
	input, cmd = input.Update(msg)
	_ = cmd
	return input
}
