package course

import (
	"fmt"
	"slices"
	"time"

	"github.com/madcourses/skillmatch/internal/domain"
)

// Entry pairs a course with its embedding.
type Entry struct {
	Course    Course
	Embedding []float32
}

// Catalog is the read-only, ordered collection of catalog entries.
// Entries keep the order the store returned them in.
type Catalog struct {
	entries  []Entry
	dim      int
	source   string
	loadedAt time.Time
}

// NewCatalog validates entries and builds a Catalog.
// Every embedding must share one dimension, ids must be unique,
// and embeddings are normalized to unit length.
// expectedDim of 0 accepts whatever dimension the entries carry.
func NewCatalog(entries []Entry, expectedDim int, source string) (*Catalog, error) {
	dim := expectedDim
	seen := make(map[int64]struct{}, len(entries))
	out := make([]Entry, len(entries))

	for i, e := range entries {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("%w: course %d has no embedding", domain.ErrInvalidCatalog, e.Course.ID())
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("%w: course %d has dimension %d, expected %d",
				domain.ErrInvalidCatalog, e.Course.ID(), len(e.Embedding), dim)
		}
		if _, dup := seen[e.Course.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate course id %d", domain.ErrInvalidCatalog, e.Course.ID())
		}
		seen[e.Course.ID()] = struct{}{}
		out[i] = Entry{Course: e.Course, Embedding: domain.Normalize(e.Embedding)}
	}

	return &Catalog{entries: out, dim: dim, source: source, loadedAt: time.Now().UTC()}, nil
}

// Entries returns the catalog entries. Callers must not modify the slice.
func (c *Catalog) Entries() []Entry { return c.entries }

// Len returns the number of courses.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Dim returns the embedding dimension (0 for an empty catalog without a configured dimension).
func (c *Catalog) Dim() int { return c.dim }

// Source returns the name of the store the catalog was loaded from.
func (c *Catalog) Source() string { return c.source }

// LoadedAt returns when the catalog was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Stats summarizes a catalog.
type Stats struct {
	Courses    int
	Dimensions int
	Source     string
	LoadedAt   time.Time
	Subjects   []string
	Terms      []string
}

// Stats computes distinct subjects and last-taught terms, both sorted.
func (c *Catalog) Stats() Stats {
	subjects := make(map[string]struct{})
	terms := make(map[string]struct{})
	for i := range c.entries {
		subjects[c.entries[i].Course.Subject()] = struct{}{}
		if t := c.entries[i].Course.LastTaught(); t != "" {
			terms[t] = struct{}{}
		}
	}
	return Stats{
		Courses:    len(c.entries),
		Dimensions: c.dim,
		Source:     c.source,
		LoadedAt:   c.loadedAt,
		Subjects:   sortedKeys(subjects),
		Terms:      sortedKeys(terms),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
