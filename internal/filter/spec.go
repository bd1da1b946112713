package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/todod/internal/model"
)

var (
	ErrInvalidStatus  = errors.New("filter: invalid status")
	ErrInvalidSortKey = errors.New("filter: invalid sort key")
)

type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Statuses is the cycle order used by the UI.
var Statuses = []Status{StatusAll, StatusActive, StatusCompleted}

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAll, "":
		return StatusAll, nil
	case StatusActive, "pending":
		return StatusActive, nil
	case StatusCompleted, "done":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type SortKey string

const (
	SortCreatedDesc  SortKey = "created-desc"
	SortDueDateAsc   SortKey = "due-date-asc"
	SortDueDateDesc  SortKey = "due-date-desc"
	SortPriorityDesc SortKey = "priority-desc"
	SortTitleAsc     SortKey = "title-asc"
	// SortManual keeps the collection order, which is what reordering edits.
	SortManual SortKey = "manual"
)

var SortKeys = []SortKey{SortCreatedDesc, SortDueDateAsc, SortDueDateDesc, SortPriorityDesc, SortTitleAsc, SortManual}

func (k SortKey) IsValid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case "":
		return SortCreatedDesc, nil
	case "created", "newest":
		return SortCreatedDesc, nil
	case "due", "due-asc":
		return SortDueDateAsc, nil
	case "due-desc":
		return SortDueDateDesc, nil
	case "priority":
		return SortPriorityDesc, nil
	case "title", "alpha":
		return SortTitleAsc, nil
	}
	if !key.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, raw)
	}
	return key, nil
}

// Spec is the full set of active filter and sort choices. The zero value
// shows everything, newest first.
type Spec struct {
	Status    Status
	Priority  model.Priority // empty means all priorities
	Group     string         // empty means all groups
	Search    string
	TodayOnly bool
	Sort      SortKey
}

func DefaultSpec() Spec {
	return Spec{Status: StatusAll, Sort: SortCreatedDesc}
}

// Partial carries only the fields a caller wants to change. Empty strings in
// Priority or Group mean "All" once the pointer is set.
type Partial struct {
	Status    *Status
	Priority  *model.Priority
	Group     *string
	Search    *string
	TodayOnly *bool
	Sort      *SortKey
}

func (s Spec) Merge(p Partial) Spec {
	out := s
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Group != nil {
		out.Group = *p.Group
	}
	if p.Search != nil {
		out.Search = *p.Search
	}
	if p.TodayOnly != nil {
		out.TodayOnly = *p.TodayOnly
	}
	if p.Sort != nil {
		out.Sort = *p.Sort
	}
	return out
}

// IsDefault reports whether no narrowing filter is active.
func (s Spec) IsDefault() bool {
	return (s.Status == StatusAll || s.Status == "") &&
		s.Priority == "" && s.Group == "" &&
		strings.TrimSpace(s.Search) == "" && !s.TodayOnly
}

func (s Spec) String() string {
	status := s.Status
	if status == "" {
		status = StatusAll
	}
	priority := string(s.Priority)
	if priority == "" {
		priority = "all"
	}
	group := s.Group
	if group == "" {
		group = "all"
	}
	parts := []string{
		"status:" + string(status),
		"priority:" + strings.ToLower(priority),
		"group:" + group,
	}
	if strings.TrimSpace(s.Search) != "" {
		parts = append(parts, fmt.Sprintf("search:%q", s.Search))
	}
	if s.TodayOnly {
		parts = append(parts, "today")
	}
	sortKey := s.Sort
	if sortKey == "" {
		sortKey = SortCreatedDesc
	}
	parts = append(parts, "sort:"+string(sortKey))
	return strings.Join(parts, " ")
}
