package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	s := NewFileStore(path)
	want := testEntries(t)

	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEntriesEqual(t, got, want)
}

func TestFileStore_ExportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	data := `[
	  {"id": 7, "subject": "STAT", "level": 240, "title": "Statistics",
	   "credit_amount": "3-4", "credit_min": null, "credit_max": null,
	   "last_taught": "S23", "description": null, "embedding": [0.1, 0.2, 0.3]},
	  {"id": 8, "subject": "ART", "level": 100, "title": "Drawing",
	   "credit_amount": "Variable", "embedding": [0.3, 0.2, 0.1]}
	]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if cr := got[0].Course.Credits(); cr.Min != 3 || cr.Max != 4 {
		t.Errorf("expected credits parsed from amount, got %+v", cr)
	}
	if cr := got[1].Course.Credits(); cr.Min != 3 || cr.Max != 3 {
		t.Errorf("expected default credits for unparseable amount, got %+v", cr)
	}
	if got[0].Course.LastTaught() != "S23" || got[1].Course.Description() != "" {
		t.Error("unexpected optional fields")
	}
}

func TestFileStore_StoredBoundsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	data := `[{"id": 1, "subject": "MATH", "level": 101, "title": "T",
	  "credit_amount": "3", "credit_min": 1, "credit_max": 6, "embedding": [1]}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cr := got[0].Course.Credits(); cr.Min != 1 || cr.Max != 6 || cr.Amount != "3" {
		t.Errorf("unexpected credits %+v", cr)
	}
}

func TestFileStore_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	noSubject := filepath.Join(dir, "nosubject.json")
	if err := os.WriteFile(noSubject, []byte(`[{"id":1,"embedding":[1]}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	for name, path := range map[string]string{
		"missing":    filepath.Join(dir, "missing.json"),
		"bad json":   bad,
		"no subject": noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewFileStore(path).Load(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
