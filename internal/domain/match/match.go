package match

import "github.com/madcourses/skillmatch/internal/domain/course"

// Match is a ranked course: its public fields plus the similarity to the query.
type Match struct {
	course     course.Course
	similarity float64
}

// New creates a match.
func New(c course.Course, similarity float64) Match {
	return Match{course: c, similarity: similarity}
}

// Course returns the matched course.
func (m *Match) Course() course.Course { return m.course }

// Similarity returns the cosine similarity in [-1, 1].
func (m *Match) Similarity() float64 { return m.similarity }

// SkillResult groups the matches of one skill phrase.
type SkillResult struct {
	Skill   string
	Matches []Match
}

// Result is the outcome of one request.
type Result struct {
	Skills []SkillResult
	// Overall ranks courses against the centroid of all skill vectors.
	// Nil unless the request asked for it.
	Overall []Match
}
