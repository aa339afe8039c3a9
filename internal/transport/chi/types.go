package chi

import "time"

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeInvalidRequest       ErrorCode = "invalid_request"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeEmbeddingUnavailable ErrorCode = "embedding_unavailable"
	CodeCatalogUnavailable   ErrorCode = "catalog_unavailable"
	CodeDimensionMismatch    ErrorCode = "dimension_mismatch"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// MatchRequest is the body of POST /api/v1/match. Optional fields are pointers
// so an absent field is distinguishable from a zero value.
type MatchRequest struct {
	Skills          []string `json:"skills"`
	K               *int     `json:"k,omitempty"`
	SubjectContains *string  `json:"subject_contains,omitempty"`
	LevelMin        *int     `json:"level_min,omitempty"`
	LevelMax        *int     `json:"level_max,omitempty"`
	CreditMin       *float64 `json:"credit_min,omitempty"`
	CreditMax       *float64 `json:"credit_max,omitempty"`
	LastTaught      *string  `json:"last_taught,omitempty"`
	// Overall adds a ranking against the centroid of all skills.
	Overall bool `json:"overall,omitempty"`
}

// MatchResponse is the body of a successful match.
type MatchResponse struct {
	Results []SkillResult `json:"results"`
	// Overall is present only when the request set "overall".
	Overall *[]CourseMatch `json:"overall,omitempty"`
}

// SkillResult holds the ranked matches for one skill.
type SkillResult struct {
	Skill   string        `json:"skill"`
	Matches []CourseMatch `json:"matches"`
}

// CourseMatch is a course's public fields plus its similarity to the skill.
type CourseMatch struct {
	ID           int64   `json:"id"`
	Subject      string  `json:"subject"`
	Level        int     `json:"level"`
	Title        string  `json:"title"`
	CreditAmount string  `json:"credit_amount"`
	CreditMin    float64 `json:"credit_min"`
	CreditMax    float64 `json:"credit_max"`
	LastTaught   string  `json:"last_taught"`
	Description  string  `json:"description"`
	Similarity   float64 `json:"similarity"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CatalogStatsResponse is the body of the catalog endpoints.
type CatalogStatsResponse struct {
	Courses    int       `json:"courses"`
	Dimensions int       `json:"dimensions"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Subjects   []string  `json:"subjects"`
	Terms      []string  `json:"terms"`
}
