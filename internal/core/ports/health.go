package ports

//go:generate mockgen -source=health.go -destination=mocks/mock_health.go -package=mocks

import "context"

// HealthChecker reports whether an external dependency is reachable.
type HealthChecker interface {
	// Ping returns nil when the dependency answers.
	Ping(ctx context.Context) error
	// Name identifies the dependency in health output ("postgresql", "redis").
	Name() string
}
