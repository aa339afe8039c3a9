package catalog

import (
	"context"
	"testing"

	"github.com/madcourses/skillmatch/internal/db"
	"github.com/madcourses/skillmatch/internal/domain/course"
)

// memKV implements kvStore for tests.
type memKV struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func testEntries(t *testing.T) []course.Entry {
	t.Helper()
	math, err := course.New(1, "MATH", 221, "Calculus", course.ParseCredits("4"), "F24", "Limits and derivatives")
	if err != nil {
		t.Fatalf("course.New: %v", err)
	}
	cs, err := course.New(2, "COMP SCI", 540, "Intro to AI", course.ParseCredits("1-6"), "", "")
	if err != nil {
		t.Fatalf("course.New: %v", err)
	}
	return []course.Entry{
		{Course: math, Embedding: []float32{0.6, 0.8}},
		{Course: cs, Embedding: []float32{1, 0}},
	}
}

func assertEntriesEqual(t *testing.T, got, want []course.Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i].Course, want[i].Course
		if g.ID() != w.ID() || g.Subject() != w.Subject() || g.Level() != w.Level() ||
			g.Title() != w.Title() || g.Credits() != w.Credits() ||
			g.LastTaught() != w.LastTaught() || g.Description() != w.Description() {
			t.Errorf("entry %d: got %+v, want %+v", i, g, w)
		}
		if len(got[i].Embedding) != len(want[i].Embedding) {
			t.Errorf("entry %d: embedding length %d, want %d", i, len(got[i].Embedding), len(want[i].Embedding))
		}
	}
}
