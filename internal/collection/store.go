// Package collection owns the ordered task list of the signed-in user. Every
// mutation is applied in memory first and then the whole list is handed to
// the Persister; a failed save never rolls the in-memory state back.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/todod/internal/model"
)

var (
	ErrPersist     = errors.New("collection: persistence failed")
	ErrDuplicateID = errors.New("collection: duplicate task id")
	// ErrSkippedRecords reports stored records that could not be loaded. They
	// are written back untouched on every save.
	ErrSkippedRecords = errors.New("collection: stored records skipped")
)

type Persister interface {
	LoadTasks(ctx context.Context, userID string) ([]model.Record, error)
	SaveTasks(ctx context.Context, userID string, records []model.Record) error
}

type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

type Store struct {
	persister Persister
	userID    string
	tasks     []model.Task
	// skipped holds raw records that failed to load, kept so saves preserve them.
	skipped []model.Record
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Open loads the user's collection. When loading fails the store still
// works on an empty collection and the error wraps ErrPersist. Records that
// cannot be decoded, or repeat an id, are left out of the collection and the
// error wraps ErrSkippedRecords; the store is usable in both cases.
func Open(ctx context.Context, persister Persister, userID string, opts Options) (*Store, error) {
	s := &Store{
		persister: persister,
		userID:    userID,
		tasks:     make([]model.Task, 0),
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "collection", "user", userID)
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	records, err := persister.LoadTasks(ctx, userID)
	if err != nil {
		s.log.Error("load tasks failed", "error", err)
		return s, fmt.Errorf("%w: load: %v", ErrPersist, err)
	}
	seen := make(map[string]bool, len(records))
	var skippedIDs []string
	for _, rec := range records {
		task, decodeErr := model.FromRecord(rec)
		var warn *model.LoadWarning
		switch {
		case errors.As(decodeErr, &warn):
			s.log.Warn("task normalized on load", "task", rec.ID, "error", decodeErr)
		case decodeErr != nil:
			s.log.Warn("skipping unreadable task", "task", rec.ID, "error", decodeErr)
			s.skipped = append(s.skipped, rec)
			skippedIDs = append(skippedIDs, fmt.Sprintf("%q", rec.ID))
			continue
		}
		if seen[task.ID] {
			s.log.Warn("skipping duplicate task id", "task", task.ID)
			s.skipped = append(s.skipped, rec)
			skippedIDs = append(skippedIDs, fmt.Sprintf("%q", rec.ID))
			continue
		}
		seen[task.ID] = true
		s.tasks = append(s.tasks, task)
	}
	s.log.Debug("collection loaded", "tasks", len(s.tasks), "skipped", len(s.skipped))
	if len(s.skipped) > 0 {
		return s, fmt.Errorf("%w: %d record(s): %s", ErrSkippedRecords, len(s.skipped), strings.Join(skippedIDs, ", "))
	}
	return s, nil
}

// Skipped is the number of stored records the collection could not load.
func (s *Store) Skipped() int { return len(s.skipped) }

func (s *Store) UserID() string { return s.userID }

func (s *Store) Len() int { return len(s.tasks) }

// Tasks returns a copy of the collection in manual order.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Get(id string) (model.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Fields are the inputs of the add form.
type Fields struct {
	Title    string
	Priority model.Priority
	DueDate  *time.Time
	Group    string
}

// Create validates the form input, assigns a fresh id and adds the task.
func (s *Store) Create(ctx context.Context, f Fields) (model.Task, error) {
	if err := model.ValidateTitle(f.Title); err != nil {
		return model.Task{}, err
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidPriority, f.Priority)
	}
	task := model.New(s.newID(), f.Title, f.Priority, f.DueDate, f.Group, s.now())
	err := s.Add(ctx, task)
	if err != nil && !errors.Is(err, ErrPersist) {
		return model.Task{}, err
	}
	return task.Clone(), err
}

// Add inserts task at the head of the order.
func (s *Store) Add(ctx context.Context, task model.Task) error {
	if s.indexOf(task.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
	}
	s.tasks = slices.Insert(s.tasks, 0, task.Clone())
	return s.save(ctx, "add")
}

// Patch lists the fields an edit touches. DueDate is only applied when
// SetDueDate is true so that nil can clear a date.
type Patch struct {
	Title      *string
	Priority   *model.Priority
	SetDueDate bool
	DueDate    *time.Time
	Group      *string
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Priority == nil && !p.SetDueDate && p.Group == nil
}

// Update applies p atomically: if any present field fails its rule the task
// is left untouched and the validation error is returned. An unknown id is a
// no-op.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("update ignored, task not found", "task", id)
		return nil
	}
	if p.IsEmpty() {
		return nil
	}
	now := s.now()
	next := s.tasks[i].Clone()
	if p.Title != nil && !next.UpdateTitle(*p.Title, now) {
		s.log.Info("update rejected", "task", id, "field", "title")
		return model.ErrInvalidTitle
	}
	if p.Priority != nil && !next.UpdatePriority(*p.Priority, now) {
		s.log.Info("update rejected", "task", id, "field", "priority", "value", *p.Priority)
		return fmt.Errorf("%w: %q", model.ErrInvalidPriority, *p.Priority)
	}
	if p.SetDueDate {
		next.UpdateDueDate(p.DueDate, now)
	}
	if p.Group != nil {
		next.UpdateGroup(*p.Group, now)
	}
	s.tasks[i] = next
	return s.save(ctx, "update")
}

func (s *Store) Remove(ctx context.Context, id string) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("remove ignored, task not found", "task", id)
		return nil
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return s.save(ctx, "remove")
}

func (s *Store) ToggleCompletion(ctx context.Context, id string) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("toggle ignored, task not found", "task", id)
		return nil
	}
	s.tasks[i].ToggleCompletion(s.now())
	return s.save(ctx, "toggle")
}

// Reorder moves id immediately before beforeID. An empty or unknown beforeID
// moves the task to the end.
func (s *Store) Reorder(ctx context.Context, id, beforeID string) error {
	from := s.indexOf(id)
	if from < 0 {
		s.log.Debug("reorder ignored, task not found", "task", id)
		return nil
	}
	if id == beforeID {
		return nil
	}
	moving := s.tasks[from]
	s.tasks = slices.Delete(s.tasks, from, from+1)

	to := len(s.tasks)
	if beforeID != "" {
		if j := s.indexOf(beforeID); j >= 0 {
			to = j
		} else {
			s.log.Debug("reorder target not found, moving to end", "task", id, "before", beforeID)
		}
	}
	s.tasks = slices.Insert(s.tasks, to, moving)
	return s.save(ctx, "reorder")
}

// ClearCompleted drops every completed task and reports how many went.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.Completed })
	removed := before - len(s.tasks)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx, "clear_completed")
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) save(ctx context.Context, op string) error {
	records := make([]model.Record, 0, len(s.tasks)+len(s.skipped))
	for _, t := range s.tasks {
		records = append(records, t.Record())
	}
	records = append(records, s.skipped...)
	if err := s.persister.SaveTasks(ctx, s.userID, records); err != nil {
		s.log.Error("save tasks failed", "op", op, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrPersist, op, err)
	}
	s.log.Debug("tasks saved", "op", op, "tasks", len(records))
	return nil
}
