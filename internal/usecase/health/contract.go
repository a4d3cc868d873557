package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// AIChecker checks AI provider availability.
type AIChecker interface {
	HealthCheck(ctx context.Context) error
}
