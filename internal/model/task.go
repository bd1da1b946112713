package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTitle    = errors.New("model: task title is required")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the enum in descending weight.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Weight orders priorities for sorting. Invalid values weigh zero.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

type Task struct {
	ID        string
	Title     string
	Completed bool
	Priority  Priority
	DueDate   *time.Time
	Group     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateTitle reports whether title is usable once trimmed. Callers run it
// before New, which only trims.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidTitle
	}
	return nil
}

// New builds a task the way the add form does. An empty priority means Medium.
func New(id, title string, priority Priority, dueDate *time.Time, group string, now time.Time) Task {
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Priority:  priority,
		DueDate:   normalizeDate(dueDate),
		Group:     strings.TrimSpace(group),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Task) ToggleCompletion(now time.Time) {
	t.Completed = !t.Completed
	t.UpdatedAt = now
}

func (t *Task) UpdateTitle(title string, now time.Time) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false
	}
	t.Title = trimmed
	t.UpdatedAt = now
	return true
}

func (t *Task) UpdatePriority(p Priority, now time.Time) bool {
	if !p.IsValid() {
		return false
	}
	t.Priority = p
	t.UpdatedAt = now
	return true
}

// UpdateDueDate accepts nil to clear the date.
func (t *Task) UpdateDueDate(d *time.Time, now time.Time) {
	t.DueDate = normalizeDate(d)
	t.UpdatedAt = now
}

func (t *Task) UpdateGroup(group string, now time.Time) {
	t.Group = strings.TrimSpace(group)
	t.UpdatedAt = now
}

// IsOverdue compares at day granularity: a task due today is not overdue.
func (t Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(DateOf(today))
}

// IsDueOn reports an exact calendar-day match.
func (t Task) IsDueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Equal(DateOf(day))
}

// Clone copies the task including its due date pointer target.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	return out
}

func normalizeDate(d *time.Time) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	day := DateOf(*d)
	return &day
}
