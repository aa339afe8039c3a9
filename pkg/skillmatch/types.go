package skillmatch

import (
	"time"

	"github.com/madcourses/skillmatch/internal/domain/course"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
)

// Course is a catalog course.
type Course struct {
	ID           int64
	Subject      string
	Level        int
	Title        string
	CreditAmount string // display form, e.g. "1-6"
	CreditMin    float64
	CreditMax    float64
	LastTaught   string // term code, e.g. "F23"
	Description  string
}

// Match is a course ranked against one skill.
type Match struct {
	Course     Course
	Similarity float64 // cosine similarity in [-1, 1]
}

// SkillResult holds the ranked matches of one skill, best first.
type SkillResult struct {
	Skill   string
	Matches []Match
}

// CatalogStats summarizes the loaded catalog.
type CatalogStats struct {
	Courses    int
	Dimensions int
	Source     string
	LoadedAt   time.Time
	Subjects   []string
	Terms      []string
}

func courseFromDomain(c *course.Course) Course {
	cr := c.Credits()
	return Course{
		ID:           c.ID(),
		Subject:      c.Subject(),
		Level:        c.Level(),
		Title:        c.Title(),
		CreditAmount: cr.Amount,
		CreditMin:    cr.Min,
		CreditMax:    cr.Max,
		LastTaught:   c.LastTaught(),
		Description:  c.Description(),
	}
}

func resultsFromDomain(results []dommatch.SkillResult) []SkillResult {
	out := make([]SkillResult, len(results))
	for i, r := range results {
		out[i] = SkillResult{Skill: r.Skill, Matches: matchesFromDomain(r.Matches)}
	}
	return out
}

func matchesFromDomain(matches []dommatch.Match) []Match {
	out := make([]Match, len(matches))
	for i := range matches {
		c := matches[i].Course()
		out[i] = Match{Course: courseFromDomain(&c), Similarity: matches[i].Similarity()}
	}
	return out
}

func statsFromDomain(st course.Stats) CatalogStats {
	return CatalogStats{
		Courses:    st.Courses,
		Dimensions: st.Dimensions,
		Source:     st.Source,
		LoadedAt:   st.LoadedAt,
		Subjects:   st.Subjects,
		Terms:      st.Terms,
	}
}
