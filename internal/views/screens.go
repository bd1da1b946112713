package views

import (
	"fmt"
	"strings"
)

type LoginPanelData struct {
	Register     bool
	UsernameView string
	PINView      string
	Pending      bool
	SpinnerView  string
	ErrorText    string
}

type TaskRowData struct {
	ID        string
	Title     string
	Completed bool
	Priority  string
	DueDate   string
	Group     string
	Overdue   bool
	DueToday  bool
}

type TaskPanelData struct {
	Username     string
	Rows         []TaskRowData
	SelectedID   string
	FilterLine   string
	StatsLine    string
	ProgressView string
	// NoTasks is true when the collection itself is empty, as opposed to the
	// filter matching nothing.
	NoTasks   bool
	InputView string
	Confirm   string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

type PreviewPanelData struct {
	Title string
	Body  string
}

func RenderLoginPanel(data LoginPanelData) string {
	var b strings.Builder
	if data.Register {
		b.WriteString("create account:\n")
	} else {
		b.WriteString("sign in:\n")
	}
	b.WriteString(data.UsernameView + "\n")
	b.WriteString(data.PINView + "\n\n")
	if data.Pending {
		b.WriteString(data.SpinnerView + " checking...\n")
	}
	if data.ErrorText != "" {
		b.WriteString(errorStyle.Render("error: "+data.ErrorText) + "\n")
	}
	if data.Register {
		b.WriteString(mutedStyle.Render("actions: [tab]field [enter]register [ctrl+r]sign in instead"))
	} else {
		b.WriteString(mutedStyle.Render("actions: [tab]field [enter]sign in [ctrl+r]create account"))
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %s\n", data.Username))
	b.WriteString(data.StatsLine + "\n")
	if data.ProgressView != "" {
		b.WriteString(data.ProgressView + "\n")
	}
	b.WriteString(mutedStyle.Render(data.FilterLine) + "\n\n")

	switch {
	case data.NoTasks:
		b.WriteString("No tasks yet. Press [a] to add one.\n")
	case len(data.Rows) == 0:
		b.WriteString("No tasks match the current filters. Use [/]reset to clear them.\n")
	default:
		for _, row := range data.Rows {
			b.WriteString(renderTaskRow(row, row.ID == data.SelectedID) + "\n")
		}
	}

	if data.InputView != "" {
		b.WriteString("\n" + data.InputView + "\n")
	}
	if data.Confirm != "" {
		b.WriteString("\n" + errorStyle.Render(data.Confirm) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func renderTaskRow(row TaskRowData, selected bool) string {
	cursor := " "
	if selected {
		cursor = cursorStyle.Render(">")
	}
	box := "[ ]"
	title := row.Title
	if row.Completed {
		box = "[x]"
		title = doneStyle.Render(title)
	}
	parts := []string{cursor, box, priorityBadge(row.Priority), title}
	if row.Group != "" {
		parts = append(parts, mutedStyle.Render("@"+row.Group))
	}
	switch {
	case row.Overdue:
		parts = append(parts, overdueStyle.Render("overdue:"+row.DueDate))
	case row.DueToday:
		parts = append(parts, "due:today")
	case row.DueDate != "":
		parts = append(parts, "due:"+row.DueDate)
	}
	return strings.Join(parts, " ")
}

func priorityBadge(priority string) string {
	label := "[" + strings.ToUpper(priority[:min(len(priority), 1)]) + "]"
	if style, ok := priorityStyles[priority]; ok {
		return style.Render(label)
	}
	return label
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}

func RenderPreviewPanel(data PreviewPanelData) string {
	return fmt.Sprintf("%s\n%s\n\n%s", data.Title, data.Body, mutedStyle.Render("[j/k]scroll [esc]close"))
}
