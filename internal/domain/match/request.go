package match

import (
	"fmt"
	"strings"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/filter"
)

// Match request limits.
const (
	DefaultK         = 5
	DefaultMaxK      = 50
	DefaultMaxSkills = 20
	// MaxSkillLength is the maximum skill phrase length in bytes.
	MaxSkillLength = 512
)

// Limits bounds what a single request may ask for.
type Limits struct {
	DefaultK  int
	MaxK      int
	MaxSkills int
}

// DefaultLimits returns the built-in request limits.
func DefaultLimits() Limits {
	return Limits{DefaultK: DefaultK, MaxK: DefaultMaxK, MaxSkills: DefaultMaxSkills}
}

// Request is a validated multi-skill match request.
type Request struct {
	skills  []string
	k       int
	filter  filter.Filter
	overall bool
}

// NewRequest validates skills and k. A nil k takes limits.DefaultK;
// k <= 0 is accepted and yields empty match lists.
// Validation errors wrap domain.ErrInvalidRequest.
func NewRequest(skills []string, k *int, f filter.Filter, limits Limits) (Request, error) {
	if len(skills) == 0 {
		return Request{}, fmt.Errorf("%w: skills must be a non-empty array", domain.ErrInvalidRequest)
	}
	if limits.MaxSkills > 0 && len(skills) > limits.MaxSkills {
		return Request{}, fmt.Errorf("%w: at most %d skills per request", domain.ErrInvalidRequest, limits.MaxSkills)
	}

	clean := make([]string, len(skills))
	for i, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			return Request{}, fmt.Errorf("%w: skills[%d] is empty", domain.ErrInvalidRequest, i)
		}
		if len(s) > MaxSkillLength {
			return Request{}, fmt.Errorf("%w: skills[%d] too long (max %d bytes)", domain.ErrInvalidRequest, i, MaxSkillLength)
		}
		clean[i] = s
	}

	topK := limits.DefaultK
	if topK <= 0 {
		topK = DefaultK
	}
	if k != nil {
		topK = *k
	}
	if limits.MaxK > 0 && topK > limits.MaxK {
		return Request{}, fmt.Errorf("%w: k must be at most %d", domain.ErrInvalidRequest, limits.MaxK)
	}

	return Request{skills: clean, k: topK, filter: f}, nil
}

// Skills returns the trimmed skill phrases in caller order.
func (r *Request) Skills() []string { return r.skills }

// K returns the number of matches per skill.
func (r *Request) K() int { return r.k }

// Filter returns the course filter.
func (r *Request) Filter() filter.Filter { return r.filter }

// SetOverall asks for an extra ranking against the skills' centroid.
func (r *Request) SetOverall(on bool) { r.overall = on }

// Overall reports whether the centroid ranking was requested.
func (r *Request) Overall() bool { return r.overall }
