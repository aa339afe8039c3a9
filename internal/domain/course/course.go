package course

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCredits is assumed for a course whose credit amount cannot be parsed.
const DefaultCredits = 3.0

// Credits is the credit range a course may be taken for.
// A fixed-credit course has Min == Max.
type Credits struct {
	Amount string
	Min    float64
	Max    float64
}

// ParseCredits derives numeric bounds from a display amount: "1-6" → [1,6], "3" → [3,3].
// Unparseable amounts fall back to DefaultCredits.
func ParseCredits(amount string) Credits {
	amount = strings.TrimSpace(amount)
	c := Credits{Amount: amount, Min: DefaultCredits, Max: DefaultCredits}

	if lo, hi, ok := strings.Cut(amount, "-"); ok {
		minV, errMin := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		maxV, errMax := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if errMin == nil && errMax == nil {
			c.Min, c.Max = minV, maxV
		}
		return c
	}

	if v, err := strconv.ParseFloat(amount, 64); err == nil {
		c.Min, c.Max = v, v
	}
	return c
}

// Course is an immutable catalog record.
type Course struct {
	id          int64
	subject     string
	level       int
	title       string
	credits     Credits
	lastTaught  string
	description string
}

// New validates and creates a Course.
func New(
	id int64, subject string, level int, title string,
	credits Credits, lastTaught, description string,
) (Course, error) {
	if subject == "" {
		return Course{}, fmt.Errorf("course %d: subject is required", id)
	}
	if credits.Min > credits.Max {
		return Course{}, fmt.Errorf("course %d: credit_min %.1f exceeds credit_max %.1f", id, credits.Min, credits.Max)
	}
	return Course{
		id:          id,
		subject:     subject,
		level:       level,
		title:       title,
		credits:     credits,
		lastTaught:  lastTaught,
		description: description,
	}, nil
}

// ID returns the unique course identifier.
func (c *Course) ID() int64 { return c.id }

// Subject returns the department code, e.g. "COMP SCI".
func (c *Course) Subject() string { return c.subject }

// Level returns the course number, e.g. 540.
func (c *Course) Level() int { return c.level }

// Title returns the course title.
func (c *Course) Title() string { return c.title }

// Credits returns the credit range.
func (c *Course) Credits() Credits { return c.credits }

// LastTaught returns the term code of the most recent offering.
func (c *Course) LastTaught() string { return c.lastTaught }

// Description returns the course description.
func (c *Course) Description() string { return c.description }
