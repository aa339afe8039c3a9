package match

import (
	"errors"
	"strings"
	"testing"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/filter"
)

func TestNewRequest_DefaultK(t *testing.T) {
	r, err := NewRequest([]string{"data analysis"}, nil, filter.Filter{}, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.K() != DefaultK {
		t.Errorf("K() = %d, want %d", r.K(), DefaultK)
	}
}

func TestNewRequest_TrimsSkillsAndKeepsOrder(t *testing.T) {
	r, err := NewRequest([]string{"  b  ", "a"}, nil, filter.Filter{}, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Skills(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Skills() = %v", got)
	}
}

func TestNewRequest_ZeroKAllowed(t *testing.T) {
	k := 0
	r, err := NewRequest([]string{"x"}, &k, filter.Filter{}, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.K() != 0 {
		t.Errorf("K() = %d, want 0", r.K())
	}
}

func TestNewRequest_Invalid(t *testing.T) {
	bigK := DefaultMaxK + 1
	tests := []struct {
		name   string
		skills []string
		k      *int
	}{
		{"nil skills", nil, nil},
		{"empty skills", []string{}, nil},
		{"blank skill", []string{"ok", "   "}, nil},
		{"too long skill", []string{strings.Repeat("x", MaxSkillLength+1)}, nil},
		{"k over max", []string{"x"}, &bigK},
		{"too many skills", make([]string, DefaultMaxSkills+1), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRequest(tc.skills, tc.k, filter.Filter{}, DefaultLimits())
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestRequest_Overall(t *testing.T) {
	req, err := NewRequest([]string{"a"}, nil, filter.Filter{}, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Overall() {
		t.Error("overall ranking must be off by default")
	}
	req.SetOverall(true)
	if !req.Overall() {
		t.Error("expected overall ranking after SetOverall(true)")
	}
}
