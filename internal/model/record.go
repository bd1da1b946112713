package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRecord = errors.New("model: invalid task record")

const timestampLayout = time.RFC3339Nano

// Record is the persisted shape of a task. Field names follow the stored
// JSON so key-value backends and exports share one contract.
type Record struct {
	ID          string `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	IsCompleted bool   `json:"isCompleted" db:"is_completed"`
	Priority    string `json:"priority" db:"priority"`
	DueDate     string `json:"dueDate,omitempty" db:"due_date"`
	Group       string `json:"group" db:"group_name"`
	CreatedAt   string `json:"createdAt" db:"created_at"`
	UpdatedAt   string `json:"updatedAt" db:"updated_at"`
}

// LoadWarning is returned next to a usable task when a stored value had to
// be normalized on load.
type LoadWarning struct {
	ID  string
	Err error
}

func (w *LoadWarning) Error() string {
	return fmt.Sprintf("model: task %s normalized on load: %v", w.ID, w.Err)
}

func (w *LoadWarning) Unwrap() error { return w.Err }

func (t Task) Record() Record {
	return Record{
		ID:          t.ID,
		Title:       t.Title,
		IsCompleted: t.Completed,
		Priority:    string(t.Priority),
		DueDate:     FormatDate(t.DueDate),
		Group:       t.Group,
		CreatedAt:   t.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// FromRecord rebuilds a task through the same path as New while keeping the
// stored id and timestamps. An unknown priority becomes Medium and is
// reported as a *LoadWarning alongside the task; any other problem makes the
// record unusable and the returned task is the zero value.
func FromRecord(rec Record) (Task, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return Task{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if err := ValidateTitle(rec.Title); err != nil {
		return Task{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, rec.ID, err)
	}
	created, err := time.Parse(timestampLayout, rec.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("%w: %s: created_at: %v", ErrInvalidRecord, rec.ID, err)
	}
	updated := created
	if rec.UpdatedAt != "" {
		updated, err = time.Parse(timestampLayout, rec.UpdatedAt)
		if err != nil {
			return Task{}, fmt.Errorf("%w: %s: updated_at: %v", ErrInvalidRecord, rec.ID, err)
		}
	}
	due, err := ParseDate(rec.DueDate)
	if err != nil {
		return Task{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, rec.ID, err)
	}

	var warning error
	priority := Priority(rec.Priority)
	if !priority.IsValid() {
		if rec.Priority != "" {
			warning = &LoadWarning{ID: rec.ID, Err: fmt.Errorf("%w: %q", ErrInvalidPriority, rec.Priority)}
		}
		priority = PriorityMedium
	}

	task := New(rec.ID, rec.Title, priority, due, rec.Group, created)
	task.Completed = rec.IsCompleted
	task.UpdatedAt = updated
	return task, warning
}
