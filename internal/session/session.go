// Package session is the controller between the presentation layer and the
// task core. Each intent mutates the collection or the filter spec and
// answers with a freshly derived Snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/todod/internal/auth"
	"github.com/sandeepkv93/todod/internal/collection"
	"github.com/sandeepkv93/todod/internal/filter"
	"github.com/sandeepkv93/todod/internal/model"
)

var (
	ErrInvalidGroup   = errors.New("session: group name is required")
	ErrDuplicateGroup = errors.New("session: group already exists")
)

type Repository interface {
	collection.Persister
	ListGroups(ctx context.Context, userID string) ([]string, error)
	SaveGroups(ctx context.Context, userID string, groups []string) error
}

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

type Notice struct {
	Level NoticeLevel
	Text  string
}

// Snapshot is everything the presentation layer renders after an intent.
type Snapshot struct {
	Visible []model.Task
	Stats   collection.Stats
	Filter  filter.Spec
	Groups  []string
	// Empty is true when the user has no tasks at all, as opposed to no
	// task matching the filter.
	Empty  bool
	Today  time.Time
	Notice *Notice
}

type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
	Locale string
	// TodayResetsStatus makes switching the today view on put the status
	// scope back to All.
	TodayResetsStatus bool
	DefaultSort       filter.SortKey
}

type Session struct {
	account auth.Account
	repo    Repository
	store   *collection.Store
	engine  *filter.Engine
	spec    filter.Spec
	groups  []string
	log     *slog.Logger
	now     func() time.Time
	policy  Options
	loadErr error
}

// Start loads the account's tasks and groups. Load failures do not stop the
// session; they surface as the Notice of the first snapshot.
func Start(ctx context.Context, repo Repository, account auth.Account, opts Options) (*Session, Snapshot) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	spec := filter.DefaultSpec()
	if opts.DefaultSort.IsValid() {
		spec.Sort = opts.DefaultSort
	}
	s := &Session{
		account: account,
		repo:    repo,
		engine:  filter.NewEngine(opts.Locale),
		spec:    spec,
		log:     opts.Logger.With("component", "session", "user", account.ID),
		now:     opts.Now,
		policy:  opts,
	}

	var notice *Notice
	store, err := collection.Open(ctx, repo, account.ID, collection.Options{
		Logger: opts.Logger,
		Now:    opts.Now,
		NewID:  opts.NewID,
	})
	s.store = store
	s.loadErr = err
	switch {
	case errors.Is(err, collection.ErrSkippedRecords):
		notice = &Notice{
			Level: NoticeError,
			Text:  fmt.Sprintf("%d stored task(s) could not be read; they are kept in storage unchanged", store.Skipped()),
		}
	case err != nil:
		notice = persistNotice()
	}
	groups, err := repo.ListGroups(ctx, account.ID)
	if err != nil {
		s.log.Error("load groups failed", "error", err)
		if notice == nil {
			notice = &Notice{Level: NoticeError, Text: "could not load groups; changes stay in memory"}
		}
		groups = nil
	}
	s.groups = append(make([]string, 0, len(groups)), groups...)
	s.log.Info("session started", "tasks", store.Len(), "groups", len(s.groups))
	return s, s.snapshot(notice)
}

func (s *Session) Account() auth.Account { return s.account }

// LoadErr is the non-fatal error from loading the collection at start, if any.
func (s *Session) LoadErr() error { return s.loadErr }

func (s *Session) Filter() filter.Spec { return s.spec }

// Tasks is the full collection in manual order, for export.
func (s *Session) Tasks() []model.Task { return s.store.Tasks() }

func (s *Session) Snapshot() Snapshot { return s.snapshot(nil) }

func (s *Session) CreateTask(ctx context.Context, f collection.Fields) (Snapshot, error) {
	task, err := s.store.Create(ctx, f)
	if err != nil && !errors.Is(err, collection.ErrPersist) {
		return s.snapshot(nil), err
	}
	s.log.Debug("task created", "task", task.ID)
	return s.afterMutation(err, fmt.Sprintf("added %q", task.Title)), nil
}

func (s *Session) EditTask(ctx context.Context, id string, p collection.Patch) (Snapshot, error) {
	err := s.store.Update(ctx, id, p)
	if err != nil && !errors.Is(err, collection.ErrPersist) {
		return s.snapshot(nil), err
	}
	return s.afterMutation(err, "task updated"), nil
}

func (s *Session) DeleteTask(ctx context.Context, id string) (Snapshot, error) {
	return s.afterMutation(s.store.Remove(ctx, id), "task deleted"), nil
}

func (s *Session) ToggleTask(ctx context.Context, id string) (Snapshot, error) {
	return s.afterMutation(s.store.ToggleCompletion(ctx, id), ""), nil
}

// ReorderTask moves id right before beforeID; an empty beforeID means the
// end of the list.
func (s *Session) ReorderTask(ctx context.Context, id, beforeID string) (Snapshot, error) {
	return s.afterMutation(s.store.Reorder(ctx, id, beforeID), ""), nil
}

func (s *Session) ClearCompleted(ctx context.Context) (Snapshot, error) {
	removed, err := s.store.ClearCompleted(ctx)
	return s.afterMutation(err, fmt.Sprintf("cleared %d completed task(s)", removed)), nil
}

// SetFilter merges a partial spec. Turning the today view on resets the
// status scope when the policy asks for it, unless the same call sets a
// status explicitly.
func (s *Session) SetFilter(p filter.Partial) (Snapshot, error) {
	if p.Status != nil {
		status, err := filter.ParseStatus(string(*p.Status))
		if err != nil {
			return s.snapshot(nil), err
		}
		p.Status = &status
	}
	if p.Priority != nil && *p.Priority != "" && !p.Priority.IsValid() {
		return s.snapshot(nil), fmt.Errorf("%w: %q", model.ErrInvalidPriority, *p.Priority)
	}
	if p.Sort != nil && !p.Sort.IsValid() {
		return s.snapshot(nil), fmt.Errorf("%w: %q", filter.ErrInvalidSortKey, *p.Sort)
	}

	next := s.spec.Merge(p)
	if s.policy.TodayResetsStatus && p.TodayOnly != nil && *p.TodayOnly && !s.spec.TodayOnly && p.Status == nil {
		next.Status = filter.StatusAll
	}
	s.spec = next
	s.log.Debug("filter changed", "spec", s.spec.String())
	return s.snapshot(nil), nil
}

func (s *Session) ResetFilter() Snapshot {
	sortKey := s.spec.Sort
	s.spec = filter.DefaultSpec()
	s.spec.Sort = sortKey
	return s.snapshot(nil)
}

func (s *Session) Groups() []string {
	return slices.Clone(s.groups)
}

func (s *Session) AddGroup(ctx context.Context, name string) (Snapshot, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return s.snapshot(nil), ErrInvalidGroup
	}
	if slices.Contains(s.groups, trimmed) {
		return s.snapshot(nil), fmt.Errorf("%w: %q", ErrDuplicateGroup, trimmed)
	}
	s.groups = append(s.groups, trimmed)
	return s.saveGroups(ctx, fmt.Sprintf("group %q added", trimmed)), nil
}

// RemoveGroup drops the name from the registry only; tasks keep their group
// value. An active filter on that group is cleared since it can no longer be
// picked.
func (s *Session) RemoveGroup(ctx context.Context, name string) (Snapshot, error) {
	trimmed := strings.TrimSpace(name)
	i := slices.Index(s.groups, trimmed)
	if i < 0 {
		s.log.Debug("remove group ignored, not found", "group", trimmed)
		return s.snapshot(nil), nil
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	if s.spec.Group == trimmed {
		s.spec.Group = ""
	}
	return s.saveGroups(ctx, fmt.Sprintf("group %q removed", trimmed)), nil
}

func (s *Session) saveGroups(ctx context.Context, okText string) Snapshot {
	if err := s.repo.SaveGroups(ctx, s.account.ID, slices.Clone(s.groups)); err != nil {
		s.log.Error("save groups failed", "error", err)
		return s.snapshot(&Notice{Level: NoticeError, Text: "could not save groups; changes stay in memory"})
	}
	return s.snapshot(&Notice{Level: NoticeInfo, Text: okText})
}

func (s *Session) afterMutation(err error, okText string) Snapshot {
	if err != nil {
		return s.snapshot(persistNotice())
	}
	if okText == "" {
		return s.snapshot(nil)
	}
	return s.snapshot(&Notice{Level: NoticeInfo, Text: okText})
}

func (s *Session) snapshot(notice *Notice) Snapshot {
	today := model.DateOf(s.now())
	all := s.store.Tasks()
	return Snapshot{
		Visible: s.engine.Apply(all, s.spec, today),
		Stats:   s.store.Stats(),
		Filter:  s.spec,
		Groups:  slices.Clone(s.groups),
		Empty:   len(all) == 0,
		Today:   today,
		Notice:  notice,
	}
}

func persistNotice() *Notice {
	return &Notice{Level: NoticeError, Text: "could not save tasks; changes stay in memory until the next successful save"}
}

// MoveTarget translates "move one row up or down in the visible list" into
// the beforeID expected by ReorderTask. ok is false at the edges.
func MoveTarget(visible []model.Task, id string, delta int) (beforeID string, ok bool) {
	i := slices.IndexFunc(visible, func(t model.Task) bool { return t.ID == id })
	if i < 0 || delta == 0 {
		return "", false
	}
	j := i + delta
	if j < 0 || j >= len(visible) {
		return "", false
	}
	if delta < 0 {
		return visible[j].ID, true
	}
	if j+1 < len(visible) {
		return visible[j+1].ID, true
	}
	return "", true
}
