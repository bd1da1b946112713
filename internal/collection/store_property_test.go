package collection

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCreatedIDsAreUniqueProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("every created task gets a distinct id", prop.ForAll(
		func(titles []string) bool {
			s, err := Open(context.Background(), newMemPersister(), "prop", Options{})
			if err != nil {
				return false
			}
			seen := make(map[string]bool, len(titles))
			for _, title := range titles {
				task, err := s.Create(context.Background(), Fields{Title: "t" + title})
				if err != nil || seen[task.ID] {
					return false
				}
				seen[task.ID] = true
			}
			return s.Len() == len(titles)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestReorderPreservesSetProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("reorder keeps the same tasks", prop.ForAll(
		func(n, from, to int) bool {
			s, _ := Open(context.Background(), newMemPersister(), "prop", Options{})
			for i := 0; i < n; i++ {
				if _, err := s.Create(context.Background(), Fields{Title: "task"}); err != nil {
					return false
				}
			}
			before := s.Tasks()
			id := before[from%n].ID
			beforeID := ""
			if to%(n+1) < n {
				beforeID = before[to%(n+1)].ID
			}
			if err := s.Reorder(context.Background(), id, beforeID); err != nil {
				return false
			}
			after := s.Tasks()
			if len(after) != len(before) {
				return false
			}
			seen := map[string]bool{}
			for _, tk := range after {
				seen[tk.ID] = true
			}
			for _, tk := range before {
				if !seen[tk.ID] {
					return false
				}
			}
			if beforeID == "" {
				return after[len(after)-1].ID == id
			}
			if beforeID == id {
				return true
			}
			for i, tk := range after {
				if tk.ID == id {
					return i+1 < len(after) && after[i+1].ID == beforeID
				}
			}
			return false
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
