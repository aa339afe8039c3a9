package catalog

import (
	"fmt"

	"github.com/madcourses/skillmatch/internal/domain/course"
)

// courseDTO is the JSON shape shared by the file export and the Redis blob.
type courseDTO struct {
	ID           int64     `json:"id"`
	Subject      string    `json:"subject"`
	Level        int       `json:"level"`
	Title        string    `json:"title"`
	CreditAmount string    `json:"credit_amount"`
	CreditMin    *float64  `json:"credit_min"`
	CreditMax    *float64  `json:"credit_max"`
	LastTaught   *string   `json:"last_taught"`
	Description  *string   `json:"description"`
	Embedding    []float32 `json:"embedding"`
}

// credits prefers stored bounds and falls back to parsing the amount text.
func credits(amount string, lo, hi *float64) course.Credits {
	cr := course.ParseCredits(amount)
	if lo != nil && hi != nil {
		cr.Min, cr.Max = *lo, *hi
	}
	return cr
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (d *courseDTO) toEntry() (course.Entry, error) {
	c, err := course.New(
		d.ID, d.Subject, d.Level, d.Title,
		credits(d.CreditAmount, d.CreditMin, d.CreditMax),
		deref(d.LastTaught), deref(d.Description),
	)
	if err != nil {
		return course.Entry{}, fmt.Errorf("course %d: %w", d.ID, err)
	}
	return course.Entry{Course: c, Embedding: d.Embedding}, nil
}

func fromEntry(e *course.Entry) courseDTO {
	cr := e.Course.Credits()
	lo, hi := cr.Min, cr.Max
	d := courseDTO{
		ID:           e.Course.ID(),
		Subject:      e.Course.Subject(),
		Level:        e.Course.Level(),
		Title:        e.Course.Title(),
		CreditAmount: cr.Amount,
		CreditMin:    &lo,
		CreditMax:    &hi,
		Embedding:    e.Embedding,
	}
	if lt := e.Course.LastTaught(); lt != "" {
		d.LastTaught = &lt
	}
	if desc := e.Course.Description(); desc != "" {
		d.Description = &desc
	}
	return d
}

func toEntries(dtos []courseDTO) ([]course.Entry, error) {
	out := make([]course.Entry, 0, len(dtos))
	for i := range dtos {
		e, err := dtos[i].toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func fromEntries(entries []course.Entry) []courseDTO {
	out := make([]courseDTO, len(entries))
	for i := range entries {
		out[i] = fromEntry(&entries[i])
	}
	return out
}
