package domain

import "context"

// ServicePort is consumed by handlers and by the ingestion side for invalidation
type ServicePort interface {
	// Get returns the cached or freshly computed forecast for a line and date
	// computation failures come back as a ForecastRow with ErrorMessage set,
	// never as an error
	Get(ctx context.Context, in GetInput) (ForecastRow, error)

	// Invalidate drops the cached forecast so the next Get recomputes
	Invalidate(ctx context.Context, in InvalidateInput) error
}
