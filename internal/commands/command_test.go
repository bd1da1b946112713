package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/todod/internal/export"
	"github.com/sandeepkv93/todod/internal/filter"
	"github.com/sandeepkv93/todod/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent", TypeAdd},
		{"search milk", TypeSearch},
		{"filter status:active", TypeFilter},
		{"sort priority", TypeSort},
		{"today", TypeToday},
		{"group add Work", TypeGroup},
		{"clear", TypeClear},
		{"export csv out.csv", TypeExport},
		{"/reset", TypeReset},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddTokens(t *testing.T) {
	cmd, err := Parse("/add pay rent !high @Home due:tomorrow")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	a := cmd.Add
	if a.Title != "pay rent" || a.Priority != model.PriorityHigh || a.Group != "Home" || a.Due != "tomorrow" {
		t.Fatalf("unexpected add args: %+v", a)
	}

	cmd, err = Parse("add undated due:NONE")
	if err != nil || cmd.Add.Due != DueNone {
		t.Fatalf("unexpected due clear: %+v, %v", cmd.Add, err)
	}

	cmd, err = Parse("add ship it due:2026-05-01")
	if err != nil || cmd.Add.Due != "2026-05-01" || cmd.Add.Priority != "" {
		t.Fatalf("unexpected add args: %+v, %v", cmd.Add, err)
	}
}

func TestParseAddKeepsTitleSpacing(t *testing.T) {
	cases := []struct {
		in, title, group string
	}{
		{"add Call  mom", "Call  mom", ""},
		{"add   pay\trent   ", "pay\trent", ""},
		{"add review  PR !high @Work due:today", "review  PR", "Work"},
		{"add pick up !low kids  at 5", "pick up kids  at 5", ""},
		{"add detach @NONE", "detach", GroupNone},
	}
	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Add.Title != tc.title || cmd.Add.Group != tc.group {
			t.Fatalf("parse %q: title %q group %q, want %q %q", tc.in, cmd.Add.Title, cmd.Add.Group, tc.title, tc.group)
		}
	}
}

func TestParseSearchKeepsText(t *testing.T) {
	cases := map[string]string{
		"search milk":       "milk",
		"search  milk":      " milk",
		"/search oat  milk": "oat  milk",
		"search milk ":      "milk ",
		"search    ":        "",
		"search":            "",
	}
	for in, want := range cases {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		if cmd.Search.Text != want {
			t.Fatalf("parse %q: search text %q, want %q", in, cmd.Search.Text, want)
		}
	}
}

func TestParseAddRejectsBadInput(t *testing.T) {
	for _, in := range []string{"add", "add !high @Work", "add x !urgent", "add x due:someday"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseFilterScopes(t *testing.T) {
	cmd, err := Parse("filter status:done priority:all group:Work")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	f := cmd.Filter
	if f.Status == nil || *f.Status != filter.StatusCompleted {
		t.Fatalf("unexpected status: %+v", f.Status)
	}
	if f.Priority == nil || *f.Priority != "" {
		t.Fatalf("expected priority cleared, got %+v", f.Priority)
	}
	if f.Group == nil || *f.Group != "Work" {
		t.Fatalf("unexpected group: %+v", f.Group)
	}

	cmd, err = Parse("filter priority:low")
	if err != nil || cmd.Filter.Status != nil || cmd.Filter.Group != nil || *cmd.Filter.Priority != model.PriorityLow {
		t.Fatalf("expected only priority scope, got %+v, %v", cmd.Filter, err)
	}

	for _, in := range []string{"filter", "filter color:red", "filter status:archived", "filter active"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("parse %q: expected error", in)
		}
	}
}

func TestParseSortTodayGroupExport(t *testing.T) {
	cmd, err := Parse("sort due-desc")
	if err != nil || cmd.Sort.Key != filter.SortDueDateDesc {
		t.Fatalf("unexpected sort: %+v, %v", cmd.Sort, err)
	}
	if _, err := Parse("sort random"); err == nil {
		t.Fatal("expected unknown sort key error")
	}

	cmd, err = Parse("today off")
	if err != nil || cmd.Today.On == nil || *cmd.Today.On {
		t.Fatalf("unexpected today args: %+v, %v", cmd.Today, err)
	}
	cmd, err = Parse("today")
	if err != nil || cmd.Today.On != nil {
		t.Fatalf("expected toggle, got %+v, %v", cmd.Today, err)
	}

	cmd, err = Parse("group rm Side Projects")
	if err != nil || cmd.Group.Action != GroupRemove || cmd.Group.Name != "Side Projects" {
		t.Fatalf("unexpected group args: %+v, %v", cmd.Group, err)
	}

	cmd, err = Parse("export md")
	if err != nil || cmd.Export.Format != export.FormatMarkdown || cmd.Export.Path != "" {
		t.Fatalf("unexpected export args: %+v, %v", cmd.Export, err)
	}
	if _, err := Parse("export pdf"); err == nil {
		t.Fatal("expected unknown format error")
	}
	if _, err := Parse("clear now"); err == nil {
		t.Fatal("expected clear to reject arguments")
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	_, err = Parse("  /  ")
	if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}

	cleared := false
	if _, err := Execute(Command{Type: TypeClear}, Handlers{Clear: func() (Result, error) {
		cleared = true
		return Result{}, nil
	}}); err != nil || !cleared {
		t.Fatalf("clear dispatch failed: cleared=%v err=%v", cleared, err)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("reset")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
