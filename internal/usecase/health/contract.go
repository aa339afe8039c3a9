package health

import "context"

// Pinger checks backing store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker reports whether a component is usable.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
