package match

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
	"github.com/madcourses/skillmatch/internal/domain/filter"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
)

type scored struct {
	entry *course.Entry
	score float64
}

// Rank scores every catalog entry that passes f against query and returns
// the top k by descending similarity. Equal scores keep catalog order.
// query must be unit-normalized and share the catalog dimension.
func Rank(query []float32, cat *course.Catalog, f filter.Filter, k int) ([]dommatch.Match, error) {
	if k <= 0 || cat == nil || cat.Len() == 0 {
		return []dommatch.Match{}, nil
	}
	if len(query) != cat.Dim() {
		return nil, fmt.Errorf("%w: query has %d dimensions, catalog has %d",
			domain.ErrDimensionMismatch, len(query), cat.Dim())
	}

	entries := cat.Entries()
	hits := make([]scored, 0, len(entries))
	for i := range entries {
		if !f.Matches(&entries[i].Course) {
			continue
		}
		hits = append(hits, scored{entry: &entries[i], score: domain.Dot(query, entries[i].Embedding)})
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	out := make([]dommatch.Match, len(hits))
	for i, h := range hits {
		out[i] = dommatch.New(h.entry.Course, h.score)
	}
	return out, nil
}
