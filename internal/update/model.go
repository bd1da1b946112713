package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/todod/internal/auth"
	"github.com/sandeepkv93/todod/internal/scheduler"
	"github.com/sandeepkv93/todod/internal/session"
)

type Screen string

const (
	ScreenLogin Screen = "Login"
	ScreenTasks Screen = "Tasks"
)

type Mode string

const (
	ModeBrowse        Mode = "browse"
	ModeAdd           Mode = "add"
	ModeEdit          Mode = "edit"
	ModeConfirmDelete Mode = "confirm-delete"
	ModePalette       Mode = "palette"
	ModePreview       Mode = "preview"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type Authenticator interface {
	Register(ctx context.Context, username, pin string) (auth.Account, error)
	Login(ctx context.Context, username, pin string) (auth.Account, error)
}

// Deps are the collaborators the TUI drives. Scheduler may be nil.
type Deps struct {
	Auth      Authenticator
	Repo      session.Repository
	Scheduler *scheduler.Engine
	Logger    *slog.Logger
	Session   session.Options
}

type LoginState struct {
	Register bool
	// Field is 0 for the username and 1 for the PIN.
	Field   int
	Pending bool
	Err     string
}

type Model struct {
	Screen         Screen
	Mode           Mode
	Login          LoginState
	Session        *session.Session
	Snap           session.Snapshot
	Cursor         int
	SelectedTaskID string
	// PendingDeleteID is the task awaiting y/n confirmation.
	PendingDeleteID string
	PreviewTitle    string
	HelpVisible     bool
	Status          StatusBar
	Quitting        bool
	LastError       error
	Scheduler       *scheduler.Engine

	deps          Deps
	log           *slog.Logger
	usernameInput textinput.Model
	pinInput      textinput.Model
	taskInput     textinput.Model
	commandInput  textinput.Model
	authSpinner   spinner.Model
	doneProgress  progress.Model
	helpModel     help.Model
	preview       viewport.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// AuthResultMsg carries the outcome of a login or registration attempt.
type AuthResultMsg struct {
	Account auth.Account
	Err     error
}

type DayRolloverMsg struct {
	Event scheduler.Event
}

func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Session.Logger == nil {
		deps.Session.Logger = deps.Logger
	}
	if deps.Session.Now == nil {
		deps.Session.Now = time.Now
	}
	m := Model{
		Screen:    ScreenLogin,
		Mode:      ModeBrowse,
		Scheduler: deps.Scheduler,
		deps:      deps,
		log:       deps.Logger.With("component", "tui"),
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.usernameInput = textinput.New()
	m.usernameInput.Prompt = "username> "
	m.usernameInput.CharLimit = 32
	m.usernameInput.Width = 32
	m.usernameInput.Focus()

	m.pinInput = textinput.New()
	m.pinInput.Prompt = "pin> "
	m.pinInput.CharLimit = 8
	m.pinInput.Width = 12
	m.pinInput.EchoMode = textinput.EchoPassword
	m.pinInput.EchoCharacter = '*'

	m.taskInput = textinput.New()
	m.taskInput.CharLimit = 256
	m.taskInput.Width = 60
	m.taskInput.Placeholder = "title !high @group due:YYYY-MM-DD"

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 60

	m.authSpinner = spinner.New()
	m.authSpinner.Spinner = spinner.Dot

	m.doneProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.helpModel = help.New()
	m.preview = viewport.New(68, 18)
}
