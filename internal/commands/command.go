package commands

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sandeepkv93/todod/internal/export"
	"github.com/sandeepkv93/todod/internal/filter"
	"github.com/sandeepkv93/todod/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeSearch Type = "search"
	TypeFilter Type = "filter"
	TypeSort   Type = "sort"
	TypeToday  Type = "today"
	TypeGroup  Type = "group"
	TypeClear  Type = "clear"
	TypeExport Type = "export"
	TypeReset  Type = "reset"
)

// Types is the list shown by the palette hint.
var Types = []Type{TypeAdd, TypeSearch, TypeFilter, TypeSort, TypeToday, TypeGroup, TypeClear, TypeExport, TypeReset}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// DueNone clears the due date when used in an edit.
const DueNone = "none"

// GroupNone (@none) clears the group when used in an edit. A new task
// written with it gets no group.
const GroupNone = "none"

// AddArgs is the quick-add form. Due stays raw so relative words resolve
// against the caller's clock.
type AddArgs struct {
	Title    string
	Priority model.Priority
	Group    string
	Due      string
}

type SearchArgs struct {
	Text string
}

// FilterArgs only sets the scopes that were named; "all" clears a scope.
type FilterArgs struct {
	Status   *filter.Status
	Priority *model.Priority
	Group    *string
}

type SortArgs struct {
	Key filter.SortKey
}

// TodayArgs.On is nil for a plain toggle.
type TodayArgs struct {
	On *bool
}

type GroupAction string

const (
	GroupAdd    GroupAction = "add"
	GroupRemove GroupAction = "rm"
)

type GroupArgs struct {
	Action GroupAction
	Name   string
}

type ExportArgs struct {
	Format export.Format
	Path   string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Search *SearchArgs
	Filter *FilterArgs
	Sort   *SortArgs
	Today  *TodayArgs
	Group  *GroupArgs
	Export *ExportArgs
}

func Parse(input string) (Command, error) {
	line := strings.TrimLeftFunc(input, unicode.IsSpace)
	line = strings.TrimLeftFunc(strings.TrimPrefix(line, "/"), unicode.IsSpace)
	if strings.TrimSpace(line) == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(line[i:])
		head, rest = line[:i], line[i+size:]
	}
	head = strings.ToLower(head)
	args := strings.Fields(rest)

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, rest)
	case TypeSearch:
		// The text is kept as typed so " milk" can skip "buttermilk".
		text := rest
		if strings.TrimSpace(text) == "" {
			text = ""
		}
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Text: text}}, nil
	case TypeFilter:
		return parseFilter(input, args)
	case TypeSort:
		return parseSort(input, args)
	case TypeToday:
		return parseToday(input, args)
	case TypeGroup:
		return parseGroup(input, args)
	case TypeClear, TypeReset:
		if len(args) > 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeExport:
		return parseExport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

type span struct{ start, end int }

// wordSpans returns the byte ranges of the whitespace separated words in s.
func wordSpans(s string) []span {
	var out []span
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(s)})
	}
	return out
}

// parseAdd pulls the !priority, @group and due: tokens out of rest. The
// remaining words form the title with their original spacing; a token in the
// middle of the title leaves a single space behind.
func parseAdd(raw, rest string) (Command, error) {
	out := AddArgs{}
	var pieces []string
	runStart, runEnd := -1, -1
	flush := func() {
		if runStart >= 0 {
			pieces = append(pieces, rest[runStart:runEnd])
			runStart = -1
		}
	}
	for _, sp := range wordSpans(rest) {
		arg := rest[sp.start:sp.end]
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(arg, "!") && len(arg) > 1:
			p, err := model.ParsePriority(arg[1:])
			if err != nil {
				return Command{}, invalid("unknown priority %q", arg[1:])
			}
			out.Priority = p
		case strings.HasPrefix(arg, "@") && len(arg) > 1:
			out.Group = arg[1:]
			if strings.EqualFold(out.Group, GroupNone) {
				out.Group = GroupNone
			}
		case strings.HasPrefix(lower, "due:"):
			due := arg[len("due:"):]
			if strings.EqualFold(due, DueNone) {
				out.Due = DueNone
				break
			}
			if _, err := model.ResolveDate(due, time.Time{}); err != nil {
				return Command{}, invalid("due date must be YYYY-MM-DD, today or tomorrow, got %q", due)
			}
			out.Due = due
		default:
			if runStart < 0 {
				runStart = sp.start
			}
			runEnd = sp.end
			continue
		}
		flush()
	}
	flush()
	out.Title = strings.Join(pieces, " ")
	if out.Title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("filter requires status:, priority: or group:")
	}
	out := FilterArgs{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if !ok {
			return Command{}, invalid("filter argument %q must be key:value", arg)
		}
		isAll := strings.EqualFold(value, "all") || value == ""
		switch strings.ToLower(key) {
		case "status":
			status, err := filter.ParseStatus(value)
			if err != nil {
				return Command{}, invalid("unknown status %q", value)
			}
			out.Status = &status
		case "priority":
			var p model.Priority
			if !isAll {
				parsed, err := model.ParsePriority(value)
				if err != nil {
					return Command{}, invalid("unknown priority %q", value)
				}
				p = parsed
			}
			out.Priority = &p
		case "group":
			group := value
			if isAll {
				group = ""
			}
			out.Group = &group
		default:
			return Command{}, invalid("unknown filter key %q", key)
		}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &out}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("sort requires one key")
	}
	key, err := filter.ParseSortKey(args[0])
	if err != nil {
		return Command{}, invalid("unknown sort key %q", args[0])
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Key: key}}, nil
}

func parseToday(raw string, args []string) (Command, error) {
	out := TodayArgs{}
	if len(args) > 1 {
		return Command{}, invalid("today takes at most one argument")
	}
	if len(args) == 1 {
		var on bool
		switch strings.ToLower(args[0]) {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return Command{}, invalid("today expects on or off, got %q", args[0])
		}
		out.On = &on
	}
	return Command{Type: TypeToday, Raw: raw, Today: &out}, nil
}

func parseGroup(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("group requires add|rm and a name")
	}
	var action GroupAction
	switch strings.ToLower(args[0]) {
	case "add":
		action = GroupAdd
	case "rm", "remove", "del":
		action = GroupRemove
	default:
		return Command{}, invalid("unknown group action %q", args[0])
	}
	return Command{Type: TypeGroup, Raw: raw, Group: &GroupArgs{Action: action, Name: strings.Join(args[1:], " ")}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, invalid("export requires a format and an optional path")
	}
	format, err := export.ParseFormat(args[0])
	if err != nil {
		return Command{}, invalid("unknown export format %q", args[0])
	}
	out := ExportArgs{Format: format}
	if len(args) == 2 {
		out.Path = args[1]
	}
	return Command{Type: TypeExport, Raw: raw, Export: &out}, nil
}
