package match

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/madcourses/skillmatch/internal/domain"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
	logpkg "github.com/madcourses/skillmatch/internal/logger"
	"github.com/madcourses/skillmatch/internal/metrics"
)

// DefaultMaxConcurrency bounds how many skills of one request are embedded at once.
const DefaultMaxConcurrency = 4

// Service matches skill phrases against the course catalog.
type Service struct {
	catalog        CatalogProvider
	embed          Embedder
	maxConcurrency int
}

// New creates a match service.
func New(catalog CatalogProvider, embed Embedder) *Service {
	return &Service{catalog: catalog, embed: embed, maxConcurrency: DefaultMaxConcurrency}
}

// WithMaxConcurrency sets the per-request embedding concurrency.
func (s *Service) WithMaxConcurrency(n int) *Service {
	if n > 0 {
		s.maxConcurrency = n
	}
	return s
}

// Match runs embed → filter → rank once per skill and returns results in the
// request's skill order. The first embedding or ranking failure fails the whole
// request and cancels the remaining embeddings.
func (s *Service) Match(ctx context.Context, req *dommatch.Request) ([]dommatch.SkillResult, error) {
	res, err := s.MatchAll(ctx, req)
	return res.Skills, err
}

// MatchAll is Match plus, when req.Overall() is set, a ranking of the
// filtered catalog against the centroid of the skill vectors.
func (s *Service) MatchAll(ctx context.Context, req *dommatch.Request) (dommatch.Result, error) {
	start := time.Now()
	res, err := s.match(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.MatchRequestsTotal.WithLabelValues(status).Inc()
	metrics.MatchRequestDuration.Observe(time.Since(start).Seconds())
	metrics.MatchSkillsPerRequest.Observe(float64(len(req.Skills())))

	return res, err
}

func (s *Service) match(ctx context.Context, req *dommatch.Request) (dommatch.Result, error) {
	cat, err := s.catalog.Get(ctx)
	if err != nil {
		return dommatch.Result{}, fmt.Errorf("get catalog: %w", err)
	}

	skills := req.Skills()
	results := make([]dommatch.SkillResult, len(skills))
	for i, skill := range skills {
		results[i] = dommatch.SkillResult{Skill: skill, Matches: []dommatch.Match{}}
	}
	out := dommatch.Result{Skills: results}
	if req.Overall() {
		out.Overall = []dommatch.Match{}
	}

	// Nothing can match: skip the provider round trips.
	if req.K() <= 0 || cat.Len() == 0 {
		return out, nil
	}

	log := logpkg.FromContext(ctx)
	filter := req.Filter()

	vectors := make([][]float32, len(skills))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, skill := range skills {
		g.Go(func() error {
			emb, err := s.embed.Embed(gctx, skill)
			if err != nil {
				return fmt.Errorf("embed skill %q: %w", skill, err)
			}
			domain.UsageFromContext(ctx).Record(emb)

			matches, err := Rank(emb.Embedding, cat, filter, req.K())
			if err != nil {
				return fmt.Errorf("rank skill %q: %w", skill, err)
			}
			results[i].Matches = matches
			vectors[i] = emb.Embedding

			log.Debug("Skill matched",
				zap.String("skill", skill),
				zap.Int("matches", len(matches)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dommatch.Result{}, err //nolint:wrapcheck // already wrapped per skill
	}

	if req.Overall() {
		overall, err := Rank(domain.Centroid(vectors), cat, filter, req.K())
		if err != nil {
			return dommatch.Result{}, fmt.Errorf("rank overall: %w", err)
		}
		out.Overall = overall
	}
	return out, nil
}
