package collection

import (
	"math"

	"github.com/sandeepkv93/todod/internal/model"
)

type Stats struct {
	Total     int
	Completed int
	Pending   int
	Percent   int
}

func (s *Store) Stats() Stats {
	return Summarize(s.tasks)
}

// Summarize counts tasks; Percent is the completed share rounded to the
// nearest whole number and 0 for an empty list.
func Summarize(tasks []model.Task) Stats {
	out := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			out.Completed++
		}
	}
	out.Pending = out.Total - out.Completed
	if out.Total > 0 {
		out.Percent = int(math.Round(float64(out.Completed) * 100 / float64(out.Total)))
	}
	return out
}
