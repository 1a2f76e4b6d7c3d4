// Package domain holds DTOs for forecast http and service contracts
package domain

import "time"

// Dates are ISO8601 without timezone; clocks are "HH:MM" in line-local time

// GetInput requests the forecast for one (line, date) pair
type GetInput struct {
	LineID string `json:"line_id" validate:"required,min=1,max=64" example:"L1"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02" example:"2025-06-02"`
}

// InvalidateInput drops the cached forecast for one (line, date) pair
// the ingestion side calls this whenever plan, results, calendar or
// changeover data changes for that day
type InvalidateInput struct {
	LineID string `json:"line_id" validate:"required,min=1,max=64" example:"L1"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02" example:"2025-06-02"`
}

// ForecastRow is the wire form of a computed forecast
type ForecastRow struct {
	LineID string `json:"line_id" example:"L1"`
	Date   string `json:"date" example:"2025-06-02"`

	// CompletionAt is the predicted instant; absent for NO_PLAN and failures
	CompletionAt *time.Time `json:"completion_at,omitempty"`
	// CompletionClock is CompletionAt rendered as "HH:MM" for dashboards
	CompletionClock string `json:"completion_time,omitempty" example:"16:42"`

	IsDelayed bool `json:"is_delayed"`
	IsNextDay bool `json:"is_next_day"`

	Confidence     int     `json:"confidence" example:"58"`
	CurrentRatePPH float64 `json:"current_rate_pph" example:"57.5"`

	PlannedQty int64 `json:"planned_qty" example:"480"`
	ActualQty  int64 `json:"actual_qty" example:"213"`

	CalculationID string    `json:"calculation_id" example:"7f9c24e8-3b0a-4f86-9f52-d27a1a90fd2f"`
	CalculatedAt  time.Time `json:"calculated_at"`

	ErrorMessage string `json:"error_message,omitempty"`
}
