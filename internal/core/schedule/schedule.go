// Package schedule implements per-line work calendars and break-aware time advancement
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight
// valid values are 0..1439
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("schedule: malformed time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("schedule: malformed hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("schedule: malformed minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("schedule: time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustTimeOfDay parses "HH:MM" and panics on malformed input
// intended for package level defaults and tests
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Hour returns the hour component 0..23
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component 0..59
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid reports whether t is within a single day
func (t TimeOfDay) Valid() bool { return t >= 0 && t < 24*60 }

// String renders "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On returns the instant at t on the calendar date of d, in d's location
func (t TimeOfDay) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, t.Hour(), t.Minute(), 0, 0, d.Location())
}

// BreakInterval is a scheduled pause in production
// End < Start means the interval wraps past midnight into the next date
type BreakInterval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Wraps reports whether the interval crosses midnight
func (b BreakInterval) Wraps() bool { return b.End < b.Start }

// WorkCalendar is the per-line schedule the forecast engine advances through
// it is configured externally and read only here
type WorkCalendar struct {
	// WorkStart is when the work day opens; it also defines the logical
	// day boundary, which is not calendar midnight
	WorkStart TimeOfDay

	// MeetingMinutes is the morning meeting held right after WorkStart
	// during which no production accrues
	MeetingMinutes int

	// Breaks holds the scheduled pauses; order and overlap are not
	// guaranteed by the caller and are normalized internally
	Breaks []BreakInterval
}

// Defaults used when a line has no calendar configured
const (
	defaultWorkStart      = "08:30"
	defaultMeetingMinutes = 15
)

// Default returns the calendar applied to lines without configuration:
// 08:30 start, 15 minute morning meeting, and the standard 4 breaks
func Default() WorkCalendar {
	return WorkCalendar{
		WorkStart:      MustTimeOfDay(defaultWorkStart),
		MeetingMinutes: defaultMeetingMinutes,
		Breaks: []BreakInterval{
			{Start: MustTimeOfDay("10:00"), End: MustTimeOfDay("10:10")},
			{Start: MustTimeOfDay("12:00"), End: MustTimeOfDay("12:45")},
			{Start: MustTimeOfDay("15:00"), End: MustTimeOfDay("15:10")},
			{Start: MustTimeOfDay("17:00"), End: MustTimeOfDay("17:15")},
		},
	}
}

// Validate rejects calendars that cannot be advanced through
func (c WorkCalendar) Validate() error {
	if !c.WorkStart.Valid() {
		return fmt.Errorf("schedule: work start %d out of range", int(c.WorkStart))
	}
	if c.MeetingMinutes < 0 {
		return fmt.Errorf("schedule: negative meeting minutes %d", c.MeetingMinutes)
	}
	for _, b := range c.Breaks {
		if !b.Start.Valid() || !b.End.Valid() {
			return fmt.Errorf("schedule: break %s-%s out of range", b.Start, b.End)
		}
	}
	return nil
}

// DayWindow returns the half open logical day window [WorkStart on d, WorkStart on d+1)
// production recorded before WorkStart belongs to the previous logical day
func (c WorkCalendar) DayWindow(d time.Time) (time.Time, time.Time) {
	start := c.WorkStart.On(d)
	return start, c.WorkStart.On(d.AddDate(0, 0, 1))
}

// ProductionStart returns the first instant production can accrue on d,
// which is WorkStart plus the morning meeting
func (c WorkCalendar) ProductionStart(d time.Time) time.Time {
	return c.WorkStart.On(d).Add(time.Duration(c.MeetingMinutes) * time.Minute)
}

// span is a break interval materialized onto concrete instants
type span struct {
	start time.Time
	end   time.Time
}

// breakSpans materializes Breaks onto the date of ref and the following date,
// sorted by start and merged so no instant is covered twice
// the extra date covers both wrapping intervals and advances that cross midnight
func (c WorkCalendar) breakSpans(ref time.Time) []span {
	spans := make([]span, 0, len(c.Breaks)*2)
	for day := 0; day <= 1; day++ {
		d := ref.AddDate(0, 0, day)
		for _, b := range c.Breaks {
			s := b.Start.On(d)
			e := b.End.On(d)
			if b.Wraps() {
				e = b.End.On(d.AddDate(0, 0, 1))
			}
			if e.After(s) {
				spans = append(spans, span{start: s, end: e})
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	// merge overlaps so a double-entered break is not consumed twice
	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && !sp.start.After(merged[n-1].end) {
			if sp.end.After(merged[n-1].end) {
				merged[n-1].end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// Advance returns the instant reached after consuming exactly minutes of
// working time from start, pausing at every break boundary it crosses
// an instant already inside a break is treated as sitting at the break's end
// the function is pure; identical inputs always yield identical outputs
func (c WorkCalendar) Advance(start time.Time, minutes float64) time.Time {
	if minutes <= 0 {
		return start
	}
	remaining := time.Duration(minutes * float64(time.Minute))
	cur := start
	for _, sp := range c.breakSpans(start) {
		if !sp.end.After(cur) {
			continue
		}
		if !sp.start.After(cur) {
			// started inside this break
			cur = sp.end
			continue
		}
		available := sp.start.Sub(cur)
		if available >= remaining {
			return cur.Add(remaining)
		}
		remaining -= available
		cur = sp.end
	}
	return cur.Add(remaining)
}
