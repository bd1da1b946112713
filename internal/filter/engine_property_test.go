package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sandeepkv93/todod/internal/model"
)

// buildTasks turns generated slices into a collection; dueOffsets outside
// [-3, 3] leave the task undated.
func buildTasks(titles []string, dueOffsets []int, done []bool) []model.Task {
	out := make([]model.Task, 0, len(titles))
	for i, title := range titles {
		var due *time.Time
		if i < len(dueOffsets) && dueOffsets[i] >= -3 && dueOffsets[i] <= 3 {
			due = day(dueOffsets[i])
		}
		p := model.Priorities[i%len(model.Priorities)]
		tk := model.New(fmt.Sprintf("t-%d", i), "x"+title, p, due, "", base.Add(time.Duration(i%4)*time.Minute))
		if i < len(done) {
			tk.Completed = done[i]
		}
		out = append(out, tk)
	}
	return out
}

func TestApplyIsIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	eng := NewEngine("en")

	properties.Property("same spec over same tasks yields same subset", prop.ForAll(
		func(titles []string, offsets []int, done []bool, sortIdx int, statusIdx int, search string) bool {
			tasks := buildTasks(titles, offsets, done)
			spec := Spec{
				Status: Statuses[statusIdx],
				Search: search,
				Sort:   SortKeys[sortIdx],
			}
			first := ids(eng.Apply(tasks, spec, base))
			second := ids(eng.Apply(tasks, spec, base))
			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(-6, 6)),
		gen.SliceOf(gen.Bool()),
		gen.IntRange(0, len(SortKeys)-1),
		gen.IntRange(0, len(Statuses)-1),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestDueDateSortsKeepUndatedLastProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	eng := NewEngine("en")

	properties.Property("undated tasks follow every dated task", prop.ForAll(
		func(titles []string, offsets []int, desc bool) bool {
			key := SortDueDateAsc
			if desc {
				key = SortDueDateDesc
			}
			seenUndated := false
			for _, tk := range eng.Apply(buildTasks(titles, offsets, nil), Spec{Sort: key}, base) {
				if tk.DueDate == nil {
					seenUndated = true
					continue
				}
				if seenUndated {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(-6, 6)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
