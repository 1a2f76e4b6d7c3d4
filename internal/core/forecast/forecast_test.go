package forecast

import (
	"reflect"
	"testing"
	"time"

	"takt/internal/core/schedule"
)

func day(clock string) time.Time {
	tod := schedule.MustTimeOfDay(clock)
	return time.Date(2025, 6, 2, tod.Hour(), tod.Minute(), 0, 0, time.UTC)
}

func noBreaks() schedule.WorkCalendar {
	return schedule.WorkCalendar{
		WorkStart:      schedule.MustTimeOfDay("08:30"),
		MeetingMinutes: 15,
	}
}

func snap(items ...RemainingItem) Snapshot {
	return Snapshot{
		LineID:    "L1",
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		AsOf:      day("09:00"),
		Calendar:  noBreaks(),
		PlanCount: max(len(items), 1),
		Items:     items,
	}
}

func TestComputeNoPlan(t *testing.T) {
	s := snap()
	s.PlanCount = 0
	f := Compute(s)
	if f.CompletionTime != nil {
		t.Fatalf("completion = %v want nil", f.CompletionTime)
	}
	if f.Confidence != 0 {
		t.Fatalf("confidence = %d want 0", f.Confidence)
	}
	if f.ErrorMessage != NoPlanMessage {
		t.Fatalf("message = %q want %q", f.ErrorMessage, NoPlanMessage)
	}
	if f.Failed() {
		t.Fatalf("no plan is a state, not a failure")
	}
}

func TestComputeAlreadyComplete(t *testing.T) {
	s := snap()
	s.PlanCount = 3
	f := Compute(s)
	if f.CompletionTime == nil || !f.CompletionTime.Equal(s.AsOf) {
		t.Fatalf("completion = %v want as-of %v", f.CompletionTime, s.AsOf)
	}
	if f.Confidence != 100 {
		t.Fatalf("confidence = %d want 100", f.Confidence)
	}
	if f.ErrorMessage != "" {
		t.Fatalf("unexpected message %q", f.ErrorMessage)
	}
}

func TestComputeNoBreakIdentity(t *testing.T) {
	// completion = start + changeover + production, exactly
	s := snap(
		RemainingItem{Part: "A", Remaining: 60, TargetPPH: 60, InProduction: true},
		RemainingItem{Part: "B", Remaining: 30, TargetPPH: 60},
	)
	f := Compute(s)
	if f.CompletionTime == nil {
		t.Fatalf("unexpected failure: %q", f.ErrorMessage)
	}
	// 60 min for A, 10 min default changeover, 30 min for B
	want := day("09:00").Add(100 * time.Minute)
	if !f.CompletionTime.Equal(want) {
		t.Fatalf("completion = %v want %v", f.CompletionTime, want)
	}
}

func TestComputeChangeoverOnlyOnPartTransition(t *testing.T) {
	same := snap(
		RemainingItem{Part: "A", Remaining: 30, TargetPPH: 60},
		RemainingItem{Part: "A", Remaining: 30, TargetPPH: 60},
	)
	f := Compute(same)
	want := day("09:00").Add(60 * time.Minute)
	if f.CompletionTime == nil || !f.CompletionTime.Equal(want) {
		t.Fatalf("same-part completion = %v want %v", f.CompletionTime, want)
	}
}

func TestComputeChangeoverDefaultApplied(t *testing.T) {
	s := snap(
		RemainingItem{Part: "A", Remaining: 30, TargetPPH: 60},
		RemainingItem{Part: "B", Remaining: 30, TargetPPH: 60},
	)
	// no rule for A->B: the documented default applies, not zero
	f := Compute(s)
	want := day("09:00").Add((60 + DefaultChangeoverSeconds/60) * time.Minute)
	if f.CompletionTime == nil || !f.CompletionTime.Equal(want) {
		t.Fatalf("completion = %v want %v", f.CompletionTime, want)
	}

	// an explicit rule wins over the default
	s.Changeovers = map[ChangeoverKey]int{{From: "A", To: "B"}: 1800}
	f = Compute(s)
	want = day("09:00").Add(90 * time.Minute)
	if f.CompletionTime == nil || !f.CompletionTime.Equal(want) {
		t.Fatalf("ruled completion = %v want %v", f.CompletionTime, want)
	}
}

func TestComputeSampledRateOnlyForInProductionItem(t *testing.T) {
	s := snap(
		RemainingItem{Part: "A", Remaining: 60, TargetPPH: 60, InProduction: true},
		RemainingItem{Part: "A", Remaining: 60, TargetPPH: 60},
	)
	s.CurrentRatePPH = 120
	f := Compute(s)
	// A runs at the sampled 120 pph (30 min), the queued batch at target (60 min)
	want := day("09:00").Add(90 * time.Minute)
	if f.CompletionTime == nil || !f.CompletionTime.Equal(want) {
		t.Fatalf("completion = %v want %v", f.CompletionTime, want)
	}
}

func TestComputeBreakAwareChangeover(t *testing.T) {
	c := noBreaks()
	c.Breaks = []schedule.BreakInterval{
		{Start: schedule.MustTimeOfDay("10:05"), End: schedule.MustTimeOfDay("10:35")},
	}
	s := snap(
		RemainingItem{Part: "A", Remaining: 60, TargetPPH: 60, InProduction: true},
		RemainingItem{Part: "B", Remaining: 30, TargetPPH: 60},
	)
	s.Calendar = c
	f := Compute(s)
	// production to 10:00, changeover of 10 min pauses 10:05-10:35,
	// so it ends 10:40, then 30 min of B
	want := day("11:10")
	if f.CompletionTime == nil || !f.CompletionTime.Equal(want) {
		t.Fatalf("completion = %v want %v", f.CompletionTime, want)
	}
}

func TestComputeDeterminism(t *testing.T) {
	s := snap(
		RemainingItem{Part: "A", Remaining: 41, TargetPPH: 37, InProduction: true},
		RemainingItem{Part: "B", Remaining: 13, TargetPPH: 55},
		RemainingItem{Part: "C", Remaining: 99, TargetPPH: 70},
	)
	s.CurrentRatePPH = 42
	a := Compute(s)
	b := Compute(s)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical snapshots diverged:\n%+v\n%+v", a, b)
	}
}

func TestComputeMonotonicInRemainingQuantity(t *testing.T) {
	base := snap(
		RemainingItem{Part: "A", Remaining: 40, TargetPPH: 60, InProduction: true},
		RemainingItem{Part: "B", Remaining: 20, TargetPPH: 60},
	)
	base.Calendar.Breaks = []schedule.BreakInterval{
		{Start: schedule.MustTimeOfDay("12:00"), End: schedule.MustTimeOfDay("12:45")},
	}
	prev := Compute(base)
	for add := int64(1); add <= 300; add += 37 {
		bumped := base
		bumped.Items = append([]RemainingItem(nil), base.Items...)
		bumped.Items[1].Remaining += add
		f := Compute(bumped)
		if f.CompletionTime == nil || prev.CompletionTime == nil {
			t.Fatalf("unexpected failure")
		}
		if f.CompletionTime.Before(*prev.CompletionTime) {
			t.Fatalf("more work finished earlier: +%d -> %v < %v", add, f.CompletionTime, prev.CompletionTime)
		}
	}
}

func TestComputeConfidenceDecaysWithItemCount(t *testing.T) {
	items := []RemainingItem{
		{Part: "A", Remaining: 10, TargetPPH: 60, InProduction: true},
		{Part: "B", Remaining: 10, TargetPPH: 60},
		{Part: "C", Remaining: 10, TargetPPH: 60},
		{Part: "D", Remaining: 10, TargetPPH: 60},
	}
	prev := 101
	for n := 1; n <= len(items); n++ {
		s := snap(items[:n]...)
		f := Compute(s)
		if f.Confidence > prev {
			t.Fatalf("confidence grew with more items: %d items -> %d > %d", n, f.Confidence, prev)
		}
		prev = f.Confidence
	}
	// 0.95 * 0.85^3 * 100 = 58.3...
	s := snap(items...)
	if f := Compute(s); f.Confidence != 58 {
		t.Fatalf("confidence = %d want 58", f.Confidence)
	}
}

func TestComputeConfidenceFloor(t *testing.T) {
	var items []RemainingItem
	items = append(items, RemainingItem{Part: "P0", Remaining: 1, TargetPPH: 600, InProduction: true})
	for i := 1; i < 20; i++ {
		items = append(items, RemainingItem{Part: "P0", Remaining: 1, TargetPPH: 600})
	}
	f := Compute(snap(items...))
	if f.Confidence != 10 {
		t.Fatalf("confidence = %d want floor 10", f.Confidence)
	}
}

func TestComputeDelayedFlag(t *testing.T) {
	s := snap(RemainingItem{Part: "A", Remaining: 600, TargetPPH: 60, InProduction: true})
	f := Compute(s)
	// 10 hours from 09:00 lands at 19:00, past the 17:00 default threshold
	if f.CompletionTime == nil || !f.IsDelayed {
		t.Fatalf("expected delayed forecast, got %+v", f)
	}

	early := snap(RemainingItem{Part: "A", Remaining: 60, TargetPPH: 60, InProduction: true})
	if g := Compute(early); g.IsDelayed {
		t.Fatalf("10:00 completion flagged delayed")
	}

	// custom threshold
	s.ShiftEnd = schedule.MustTimeOfDay("20:00")
	if g := Compute(s); g.IsDelayed {
		t.Fatalf("19:00 completion delayed against a 20:00 threshold")
	}
}

func TestComputeNextDayAgainstWorkStartNotMidnight(t *testing.T) {
	// finishing at 01:30 the next calendar date is still the same work day
	s := snap(RemainingItem{Part: "A", Remaining: 990, TargetPPH: 60, InProduction: true})
	f := Compute(s)
	if f.CompletionTime == nil {
		t.Fatalf("unexpected failure %q", f.ErrorMessage)
	}
	if f.CompletionTime.Day() != 3 {
		t.Fatalf("expected completion on the next date, got %v", f.CompletionTime)
	}
	if f.IsNextDay {
		t.Fatalf("completion before next work start flagged next-day")
	}
}

func TestComputeNextDayFlagSet(t *testing.T) {
	s := snap(RemainingItem{Part: "A", Remaining: 25 * 60, TargetPPH: 60, InProduction: true})
	f := Compute(s)
	if f.CompletionTime == nil || !f.IsNextDay {
		t.Fatalf("expected next-day forecast, got %+v", f)
	}
}

func TestComputeClampsStartToProductionStart(t *testing.T) {
	s := snap(RemainingItem{Part: "A", Remaining: 60, TargetPPH: 60, InProduction: true})
	s.AsOf = day("07:00")
	f := Compute(s)
	// work opens 08:30, meeting ends 08:45, plus 60 minutes
	want := day("09:45")
	if f.CompletionTime == nil || !f.CompletionTime.Equal(want) {
		t.Fatalf("completion = %v want %v", f.CompletionTime, want)
	}
}

func TestComputeErrorStates(t *testing.T) {
	// zero rate with remaining work cannot be forecast
	s := snap(RemainingItem{Part: "A", Remaining: 10})
	f := Compute(s)
	if !f.Failed() || f.CompletionTime != nil || f.Confidence != 0 {
		t.Fatalf("expected failed forecast, got %+v", f)
	}

	// malformed calendar
	s = snap(RemainingItem{Part: "A", Remaining: 10, TargetPPH: 60})
	s.Calendar.WorkStart = schedule.TimeOfDay(9999)
	f = Compute(s)
	if !f.Failed() || f.CompletionTime != nil {
		t.Fatalf("expected calendar failure, got %+v", f)
	}

	// negative remaining is malformed input, not a crash
	s = snap(RemainingItem{Part: "A", Remaining: -1, TargetPPH: 60})
	f = Compute(s)
	if !f.Failed() {
		t.Fatalf("expected failure for negative remaining, got %+v", f)
	}
}
