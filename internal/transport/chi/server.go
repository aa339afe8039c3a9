package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
	"github.com/madcourses/skillmatch/internal/domain/filter"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
	cataloguc "github.com/madcourses/skillmatch/internal/usecase/catalog"
	healthuc "github.com/madcourses/skillmatch/internal/usecase/health"
	matchuc "github.com/madcourses/skillmatch/internal/usecase/match"
)

const maxBodyBytes = 1 << 20

// headerEmbeddingTokens reports provider tokens spent on a match request.
const headerEmbeddingTokens = "X-Embedding-Tokens"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the matching API.
type Server struct {
	match         *matchuc.Service
	catalog       *cataloguc.Cache
	health        *healthuc.Service
	limits        dommatch.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	match *matchuc.Service,
	catalog *cataloguc.Cache,
	health *healthuc.Service,
	limits dommatch.Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		match:   match,
		catalog: catalog,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		invalidRequestHandler,
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, CodeEmbeddingUnavailable),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, CodeCatalogUnavailable),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, CodeDimensionMismatch),
	}
	return s
}

// Register mounts the API routes on r. apiKeys protect the catalog admin
// routes; an empty list disables auth.
func (s *Server) Register(r chi.Router, apiKeys []string) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match", s.Match)
		r.Get("/catalog", s.CatalogStats)
		r.With(BearerAuthMiddleware(apiKeys)).Post("/catalog/reload", s.ReloadCatalog)
	})
}

// Match handles POST /api/v1/match.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	matchReq, err := matchRequestFromDTO(&req, s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.match.MatchAll(ctx, &matchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, matchResponseToDTO(res))
}

// CatalogStats handles GET /api/v1/catalog. Loads the catalog if needed.
func (s *Server) CatalogStats(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Get(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToDTO(cat.Stats()))
}

// ReloadCatalog handles POST /api/v1/catalog/reload.
func (s *Server) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.logger.Info("Catalog reloaded via API",
		zap.String("source", cat.Source()),
		zap.Int("courses", cat.Len()),
	)
	writeJSON(w, http.StatusOK, statsToDTO(cat.Stats()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func matchRequestFromDTO(req *MatchRequest, limits dommatch.Limits) (dommatch.Request, error) {
	f, err := filter.New(filter.Params{
		SubjectContains: req.SubjectContains,
		LevelMin:        req.LevelMin,
		LevelMax:        req.LevelMax,
		CreditMin:       req.CreditMin,
		CreditMax:       req.CreditMax,
		LastTaught:      req.LastTaught,
	})
	if err != nil {
		return dommatch.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	matchReq, err := dommatch.NewRequest(req.Skills, req.K, f, limits)
	if err != nil {
		return dommatch.Request{}, err //nolint:wrapcheck // message goes to the client as is
	}
	matchReq.SetOverall(req.Overall)
	return matchReq, nil
}

func matchResponseToDTO(res dommatch.Result) MatchResponse {
	out := MatchResponse{Results: make([]SkillResult, len(res.Skills))}
	for i, sr := range res.Skills {
		out.Results[i] = SkillResult{Skill: sr.Skill, Matches: matchesToDTO(sr.Matches)}
	}
	if res.Overall != nil {
		overall := matchesToDTO(res.Overall)
		out.Overall = &overall
	}
	return out
}

func matchesToDTO(matches []dommatch.Match) []CourseMatch {
	out := make([]CourseMatch, len(matches))
	for i, m := range matches {
		out[i] = courseMatchToDTO(m)
	}
	return out
}

func courseMatchToDTO(m dommatch.Match) CourseMatch {
	c := m.Course()
	cr := c.Credits()
	return CourseMatch{
		ID:           c.ID(),
		Subject:      c.Subject(),
		Level:        c.Level(),
		Title:        c.Title(),
		CreditAmount: cr.Amount,
		CreditMin:    cr.Min,
		CreditMax:    cr.Max,
		LastTaught:   c.LastTaught(),
		Description:  c.Description(),
		Similarity:   m.Similarity(),
	}
}

func statsToDTO(st course.Stats) CatalogStatsResponse {
	return CatalogStatsResponse{
		Courses:    st.Courses,
		Dimensions: st.Dimensions,
		Source:     st.Source,
		LoadedAt:   st.LoadedAt,
		Subjects:   st.Subjects,
		Terms:      st.Terms,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Calls() > 0 {
		w.Header().Set(headerEmbeddingTokens, strconv.FormatInt(usage.TotalTokens(), 10))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrEmbeddingUnavailable,
		domain.ErrCatalogUnavailable,
		domain.ErrDimensionMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidRequestHandler reports validation failures with their full message;
// those messages only ever describe the caller's input.
func invalidRequestHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
