package skillmatch

import (
	"context"
	"fmt"
	"time"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/filter"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
)

// MatchOption narrows or sizes a Match call.
type MatchOption func(*matchConfig)

type matchConfig struct {
	k      *int
	params filter.Params
}

// WithK sets the number of matches per skill (default 5). k <= 0 yields
// empty match lists.
func WithK(k int) MatchOption {
	return func(c *matchConfig) { c.k = &k }
}

// WithSubjectContains keeps courses whose subject contains s, case-insensitive.
func WithSubjectContains(s string) MatchOption {
	return func(c *matchConfig) { c.params.SubjectContains = &s }
}

// WithLevelRange keeps courses with min <= level <= max.
func WithLevelRange(minLevel, maxLevel int) MatchOption {
	return func(c *matchConfig) {
		c.params.LevelMin = &minLevel
		c.params.LevelMax = &maxLevel
	}
}

// WithMinLevel keeps courses at or above level.
func WithMinLevel(level int) MatchOption {
	return func(c *matchConfig) { c.params.LevelMin = &level }
}

// WithCreditRange keeps courses whose credit range overlaps [minCredits, maxCredits].
func WithCreditRange(minCredits, maxCredits float64) MatchOption {
	return func(c *matchConfig) {
		c.params.CreditMin = &minCredits
		c.params.CreditMax = &maxCredits
	}
}

// WithLastTaught keeps courses last taught in or after term, e.g. "F23".
func WithLastTaught(term string) MatchOption {
	return func(c *matchConfig) { c.params.LastTaught = &term }
}

// Match ranks the catalog against each skill and returns one result per
// skill in input order. Any embedding failure fails the whole call.
func (c *Client) Match(ctx context.Context, skills []string, opts ...MatchOption) (results []SkillResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("match", start, err, "skills", len(skills)) }()

	res, err := c.matchAll(ctx, skills, false, opts)
	if err != nil {
		return nil, err
	}
	c.obs.skillsMatched(len(res.Skills))
	return resultsFromDomain(res.Skills), nil
}

// MatchOverall ranks the catalog against the combined profile of all skills
// (the normalized mean of their vectors) and returns the top courses.
// Options apply as in Match.
func (c *Client) MatchOverall(ctx context.Context, skills []string, opts ...MatchOption) (matches []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("match_overall", start, err, "skills", len(skills)) }()

	res, err := c.matchAll(ctx, skills, true, opts)
	if err != nil {
		return nil, err
	}
	c.obs.skillsMatched(len(res.Skills))
	return matchesFromDomain(res.Overall), nil
}

func (c *Client) matchAll(ctx context.Context, skills []string, overall bool, opts []MatchOption) (dommatch.Result, error) {
	var mc matchConfig
	for _, o := range opts {
		o(&mc)
	}

	f, err := filter.New(mc.params)
	if err != nil {
		return dommatch.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	req, err := dommatch.NewRequest(skills, mc.k, f, c.limits)
	if err != nil {
		return dommatch.Result{}, err //nolint:wrapcheck // already wraps ErrInvalidRequest
	}
	req.SetOverall(overall)

	res, err := c.matchSvc.MatchAll(ctx, &req)
	if err != nil {
		return dommatch.Result{}, fmt.Errorf("match: %w", err)
	}
	return res, nil
}
