// Package http provides http transport for forecasts
package http

import (
	stdhttp "net/http"

	"takt/internal/modkit/httpkit"
	"takt/internal/services/forecast/domain"
	svc "takt/internal/services/forecast/service"
)

// Register mounts forecast endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// read-through forecast for one line and date
	httpkit.PostJSON[domain.GetInput](r, "/get", h.get)

	// explicit invalidation hook for the ingestion side
	httpkit.PostJSON[domain.InvalidateInput](r, "/invalidate", h.invalidate)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /forecast/get Forecast forecastGet
// @Summary Completion-time forecast for a line and date
// @Tags Forecast
// @Accept json
// @Produce json
// @Param payload body domain.GetInput true "Query"
// @Success 200 {object} domain.ForecastRow "ok"
// @Router /forecast/get [post]
func (h *handlers) get(r *stdhttp.Request, in domain.GetInput) (any, error) {
	return h.svc.Get(r.Context(), in)
}

// swagger:route POST /forecast/invalidate Forecast forecastInvalidate
// @Summary Drop the cached forecast for a line and date
// @Tags Forecast
// @Accept json
// @Produce json
// @Param payload body domain.InvalidateInput true "Target"
// @Success 200 {object} any "ok"
// @Router /forecast/invalidate [post]
func (h *handlers) invalidate(r *stdhttp.Request, in domain.InvalidateInput) (any, error) {
	if err := h.svc.Invalidate(r.Context(), in); err != nil {
		return nil, err
	}
	return map[string]any{"invalidated": true}, nil
}
