package module

import (
	"context"

	"takt/internal/services/forecast/domain"
	fcsvc "takt/internal/services/forecast/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptForecastPort struct{ svc fcsvc.Service }

// Get returns the cached or freshly computed forecast for a line and date
func (a adaptForecastPort) Get(ctx context.Context, in domain.GetInput) (domain.ForecastRow, error) {
	return a.svc.Get(ctx, in)
}

// Invalidate drops the cached forecast for a line and date
func (a adaptForecastPort) Invalidate(ctx context.Context, in domain.InvalidateInput) error {
	return a.svc.Invalidate(ctx, in)
}
