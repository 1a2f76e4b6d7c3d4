// Package forecast implements the completion-time forecast calculator
//
// Compute is a pure function of its Snapshot: identical snapshots produce
// identical Forecast values. All data access happens upstream in the service
// that assembles the snapshot, which keeps the state machine deterministic
// and unit-testable without wall-clock mocking
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"takt/internal/core/schedule"
)

// Named defaults consolidated from the drifting literals of the legacy
// forecast variants; all of them are overridable per Snapshot or via config
const (
	// DefaultChangeoverSeconds applies when no rule covers a part pair
	DefaultChangeoverSeconds = 600

	// DefaultShiftEnd is the threshold after which a completion counts as delayed
	DefaultShiftEnd = schedule.TimeOfDay(17 * 60)

	// confidence decay per item, floored at confidenceFloor
	confidenceInProgress = 0.95
	confidenceUpcoming   = 0.85
	confidenceFloor      = 10.0

	// NoPlanMessage is the message carried by a forecast with no plan rows
	NoPlanMessage = "no plan"
)

// RemainingItem is one plan row still to be produced, in sequence order
type RemainingItem struct {
	Part         string
	Remaining    int64
	TargetPPH    float64
	InProduction bool
}

// ChangeoverKey identifies a downtime rule for a part transition
type ChangeoverKey struct {
	From string
	To   string
}

// Snapshot carries everything Compute needs, assembled by the service layer
// from the plan, actuals, calendar and changeover sources
type Snapshot struct {
	LineID string

	// Date is the target production date at midnight in line-local time
	Date time.Time

	// AsOf is the instant the forecast is computed from, threaded explicitly
	// instead of calling the wall clock inside the engine
	AsOf time.Time

	Calendar schedule.WorkCalendar

	// PlanCount is the number of plan rows for the day; zero means NO_PLAN
	// even when Items is also empty for the COMPLETE case
	PlanCount int

	// Items holds the remaining work in plan sequence order
	Items []RemainingItem

	// Changeovers is the sparse downtime rule set in seconds
	Changeovers map[ChangeoverKey]int

	// ChangeoverDefaultSeconds applies when a pair has no rule; zero selects
	// DefaultChangeoverSeconds
	ChangeoverDefaultSeconds int

	// CurrentRatePPH is the sampled rate for the in-production item,
	// already clamped and target-backed by the sampler; zero means no sample
	CurrentRatePPH float64

	// ShiftEnd overrides the delay threshold; zero selects DefaultShiftEnd
	ShiftEnd schedule.TimeOfDay

	PlannedTotal int64
	ActualTotal  int64
}

// Forecast is the computed prediction for one (line, date) pair
// CalculationID and CalculatedAt are stamped by the caller after Compute so
// the computation itself stays byte-identical for identical snapshots
type Forecast struct {
	LineID         string
	Date           time.Time
	CompletionTime *time.Time
	IsDelayed      bool
	IsNextDay      bool
	Confidence     int
	CurrentRatePPH float64
	PlannedTotal   int64
	ActualTotal    int64
	CalculationID  uuid.UUID
	CalculatedAt   time.Time
	ErrorMessage   string
}

// Failed reports whether the forecast carries a computation failure
func (f Forecast) Failed() bool {
	return f.ErrorMessage != "" && f.ErrorMessage != NoPlanMessage
}

// Compute runs the forecast state machine over the snapshot
// it never panics out; any computation failure is returned as a forecast
// with ErrorMessage set, confidence 0 and no completion time
func Compute(s Snapshot) (out Forecast) {
	out = Forecast{
		LineID:         s.LineID,
		Date:           s.Date,
		CurrentRatePPH: s.CurrentRatePPH,
		PlannedTotal:   s.PlannedTotal,
		ActualTotal:    s.ActualTotal,
	}

	defer func() {
		if r := recover(); r != nil {
			out.CompletionTime = nil
			out.Confidence = 0
			out.ErrorMessage = fmt.Sprintf("forecast computation panicked: %v", r)
		}
	}()

	// NO_PLAN terminal state
	if s.PlanCount == 0 {
		out.ErrorMessage = NoPlanMessage
		return out
	}

	if err := s.Calendar.Validate(); err != nil {
		out.ErrorMessage = err.Error()
		return out
	}

	// COMPLETE terminal state
	if len(s.Items) == 0 {
		done := s.AsOf
		out.CompletionTime = &done
		out.Confidence = 100
		return out
	}

	// IN_PROGRESS: walk the remaining items strictly in plan order
	cur := s.AsOf
	if ps := s.Calendar.ProductionStart(s.Date); cur.Before(ps) {
		// nothing runs before the shift opens and the morning meeting ends
		cur = ps
	}

	confidence := 100.0
	prevPart := ""
	for i, item := range s.Items {
		if item.Remaining < 0 {
			out.ErrorMessage = fmt.Sprintf("part %s has negative remaining quantity %d", item.Part, item.Remaining)
			return out
		}
		if i > 0 && item.Part != prevPart {
			cur = s.Calendar.Advance(cur, float64(s.changeoverSeconds(prevPart, item.Part))/60)
		}

		rate := item.TargetPPH
		if item.InProduction && s.CurrentRatePPH > 0 {
			rate = s.CurrentRatePPH
		}
		if rate <= 0 {
			out.ErrorMessage = fmt.Sprintf("part %s has no usable production rate", item.Part)
			return out
		}

		cur = s.Calendar.Advance(cur, float64(item.Remaining)/rate*60)

		if item.InProduction {
			confidence *= confidenceInProgress
		} else {
			confidence *= confidenceUpcoming
		}
		prevPart = item.Part
	}

	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	done := cur
	out.CompletionTime = &done
	out.Confidence = int(math.Round(confidence))

	shiftEnd := s.ShiftEnd
	if shiftEnd == 0 {
		shiftEnd = DefaultShiftEnd
	}
	out.IsDelayed = timeOfDay(done) > shiftEnd

	// the next logical day starts at the next date's work start, not midnight,
	// since a line may legitimately run through midnight
	nextDayStart := s.Calendar.WorkStart.On(s.Date.AddDate(0, 0, 1))
	out.IsNextDay = !done.Before(nextDayStart)

	return out
}

// changeoverSeconds resolves the downtime for a part transition
// absence of a rule is not an error; the default constant applies
func (s Snapshot) changeoverSeconds(from, to string) int {
	if secs, ok := s.Changeovers[ChangeoverKey{From: from, To: to}]; ok {
		return secs
	}
	if s.ChangeoverDefaultSeconds > 0 {
		return s.ChangeoverDefaultSeconds
	}
	return DefaultChangeoverSeconds
}

func timeOfDay(t time.Time) schedule.TimeOfDay {
	return schedule.TimeOfDay(t.Hour()*60 + t.Minute())
}
