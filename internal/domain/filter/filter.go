package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/madcourses/skillmatch/internal/domain/course"
)

// termRegex matches a term code: F (fall), S (spring) or U (summer) plus a two-digit year.
var termRegex = regexp.MustCompile(`^[FSU]\d{2}$`)

// Params carries the optional filter fields of a request. nil means absent.
type Params struct {
	SubjectContains *string
	LevelMin        *int
	LevelMax        *int
	CreditMin       *float64
	CreditMax       *float64
	LastTaught      *string
}

// Filter is a validated set of optional course predicates.
// The zero value matches every course.
type Filter struct {
	subject    string // case-folded; "" means no constraint
	levelMin   *int
	levelMax   *int
	creditMin  *float64
	creditMax  *float64
	lastTaught string
}

// New validates params and creates a Filter.
// Empty strings are treated as absent.
func New(p Params) (Filter, error) {
	var f Filter

	if p.SubjectContains != nil {
		f.subject = strings.ToLower(strings.TrimSpace(*p.SubjectContains))
	}

	if p.LevelMin != nil && *p.LevelMin < 0 {
		return Filter{}, fmt.Errorf("level_min must be >= 0")
	}
	if p.LevelMax != nil && *p.LevelMax < 0 {
		return Filter{}, fmt.Errorf("level_max must be >= 0")
	}
	if p.LevelMin != nil && p.LevelMax != nil && *p.LevelMax < *p.LevelMin {
		return Filter{}, fmt.Errorf("level_max must be >= level_min")
	}
	f.levelMin = cloneInt(p.LevelMin)
	f.levelMax = cloneInt(p.LevelMax)

	if p.CreditMin != nil && *p.CreditMin < 0 {
		return Filter{}, fmt.Errorf("credit_min must be >= 0")
	}
	if p.CreditMax != nil && *p.CreditMax < 0 {
		return Filter{}, fmt.Errorf("credit_max must be >= 0")
	}
	if p.CreditMin != nil && p.CreditMax != nil && *p.CreditMax < *p.CreditMin {
		return Filter{}, fmt.Errorf("credit_max must be >= credit_min")
	}
	f.creditMin = cloneFloat(p.CreditMin)
	f.creditMax = cloneFloat(p.CreditMax)

	if p.LastTaught != nil && *p.LastTaught != "" {
		term := strings.ToUpper(strings.TrimSpace(*p.LastTaught))
		if !termRegex.MatchString(term) {
			return Filter{}, fmt.Errorf("last_taught must be a term code like F23, S24 or U24, got %q", *p.LastTaught)
		}
		f.lastTaught = term
	}

	return f, nil
}

// IsEmpty reports whether the filter imposes no constraint.
func (f Filter) IsEmpty() bool {
	return f.subject == "" && f.levelMin == nil && f.levelMax == nil &&
		f.creditMin == nil && f.creditMax == nil && f.lastTaught == ""
}

// Matches reports whether c passes every active clause.
func (f Filter) Matches(c *course.Course) bool {
	if f.subject != "" && !strings.Contains(strings.ToLower(c.Subject()), f.subject) {
		return false
	}
	if f.levelMin != nil && c.Level() < *f.levelMin {
		return false
	}
	if f.levelMax != nil && c.Level() > *f.levelMax {
		return false
	}
	if !f.creditsOverlap(c.Credits()) {
		return false
	}
	if f.lastTaught != "" && c.LastTaught() < f.lastTaught {
		return false
	}
	return true
}

// creditsOverlap tests the closed intervals [cr.Min, cr.Max] and
// [creditMin, creditMax] for intersection; a missing bound is unbounded.
func (f Filter) creditsOverlap(cr course.Credits) bool {
	if f.creditMin != nil && cr.Max < *f.creditMin {
		return false
	}
	if f.creditMax != nil && cr.Min > *f.creditMax {
		return false
	}
	return true
}

// SubjectContains returns the case-folded subject substring ("" if absent).
func (f Filter) SubjectContains() string { return f.subject }

// LevelMin returns the inclusive lower level bound, or nil.
func (f Filter) LevelMin() *int { return f.levelMin }

// LevelMax returns the inclusive upper level bound, or nil.
func (f Filter) LevelMax() *int { return f.levelMax }

// CreditMin returns the lower credit bound, or nil.
func (f Filter) CreditMin() *float64 { return f.creditMin }

// CreditMax returns the upper credit bound, or nil.
func (f Filter) CreditMax() *float64 { return f.creditMax }

// LastTaught returns the last-taught lower bound ("" if absent).
func (f Filter) LastTaught() string { return f.lastTaught }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
