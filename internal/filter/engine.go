// Package filter derives the visible subset of a task collection from a Spec.
// Apply never mutates its input; the same spec over the same tasks always
// yields the same order.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/todod/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Engine struct {
	locale language.Tag
}

// NewEngine builds an engine whose title ordering follows locale. An
// unparsable locale falls back to the root collation.
func NewEngine(locale string) *Engine {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.Und
	}
	return &Engine{locale: tag}
}

func (e *Engine) Locale() language.Tag {
	return e.locale
}

// Apply filters then stably sorts a copy of tasks. today is only consulted
// for the today-only predicate.
func (e *Engine) Apply(tasks []model.Task, spec Spec, today time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	match := e.predicate(spec, today)
	for _, t := range tasks {
		if match(t) {
			out = append(out, t.Clone())
		}
	}
	e.sort(out, spec.Sort)
	return out
}

func (e *Engine) predicate(spec Spec, today time.Time) func(model.Task) bool {
	day := model.DateOf(today)
	fold := cases.Fold()
	// A blank search matches everything; otherwise the text is matched as typed.
	var needle string
	if strings.TrimSpace(spec.Search) != "" {
		needle = fold.String(spec.Search)
	}

	return func(t model.Task) bool {
		if spec.TodayOnly && !t.IsDueOn(day) {
			return false
		}
		switch spec.Status {
		case StatusActive:
			if t.Completed {
				return false
			}
		case StatusCompleted:
			if !t.Completed {
				return false
			}
		}
		if spec.Priority != "" && t.Priority != spec.Priority {
			return false
		}
		if spec.Group != "" && t.Group != spec.Group {
			return false
		}
		if needle != "" && !strings.Contains(fold.String(t.Title), needle) {
			return false
		}
		return true
	}
}

func (e *Engine) sort(tasks []model.Task, key SortKey) {
	switch key {
	case SortManual:
		return
	case SortDueDateAsc:
		slices.SortStableFunc(tasks, func(a, b model.Task) int { return compareDue(a, b, false) })
	case SortDueDateDesc:
		slices.SortStableFunc(tasks, func(a, b model.Task) int { return compareDue(a, b, true) })
	case SortPriorityDesc:
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		})
	case SortTitleAsc:
		col := collate.New(e.locale)
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return col.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

// compareDue keeps undated tasks after dated ones in both directions.
func compareDue(a, b model.Task, desc bool) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	c := a.DueDate.Compare(*b.DueDate)
	if desc {
		return -c
	}
	return c
}
