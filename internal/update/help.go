package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/todod/internal/commands"
	"github.com/sandeepkv93/todod/internal/views"
)

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func binding(keys, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(strings.Split(keys, "/")...), key.WithHelp(keys, desc))
}

var (
	loginBindings = []key.Binding{
		binding("tab", "switch field"),
		binding("enter", "submit"),
		binding("ctrl+r", "sign in / create account"),
		binding("esc", "quit"),
	}
	taskBindings = []key.Binding{
		binding("j/k", "move cursor"),
		binding("a", "add task"),
		binding("e", "edit selected"),
		binding("space", "toggle done"),
		binding("d", "delete selected"),
		binding("K/J", "move up / down (manual sort)"),
	}
	filterBindings = []key.Binding{
		binding("f", "cycle status"),
		binding("p", "cycle priority"),
		binding("g", "cycle group"),
		binding("s", "cycle sort"),
		binding("t", "toggle today view"),
		binding("/", "command palette"),
		binding("?", "toggle help"),
		binding("q", "quit"),
	}
)

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	keys := helpKeyMap{short: loginBindings, full: [][]key.Binding{loginBindings}}
	lines := []string{"quick add: title !high @group|@none due:YYYY-MM-DD|today|tomorrow|none"}
	if m.Screen == ScreenTasks {
		keys = helpKeyMap{
			short: append(append([]key.Binding{}, taskBindings...), filterBindings...),
			full:  [][]key.Binding{taskBindings, filterBindings},
		}
		names := make([]string, 0, len(commands.Types))
		for _, t := range commands.Types {
			names = append(names, string(t))
		}
		lines = append(lines, fmt.Sprintf("commands: %s", strings.Join(names, ", ")))
	}
	hm := m.helpModel
	hm.ShowAll = true
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: lines,
		HelpView: hm.View(keys),
	})
}
