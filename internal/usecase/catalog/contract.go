package catalog

import (
	"context"

	"github.com/madcourses/skillmatch/internal/domain/course"
)

// Loader reads the full course catalog from one store.
type Loader interface {
	Load(ctx context.Context) ([]course.Entry, error)
	// Name identifies the store in logs and metrics.
	Name() string
}
