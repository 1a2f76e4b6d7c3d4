// Package repo provides postgres access for forecast reference data
package repo

import (
	"context"

	"takt/internal/modkit/repokit"
)

// Repo is the read-only persistence surface the forecast engine needs
// plans, calendars and changeover rules are owned by the excluded
// configuration screens; this package never writes
type Repo interface {
	// PlanItems returns the day's plan ordered by sequence
	PlanItems(ctx context.Context, lineID, date string) ([]PlanItemRow, error)

	// Calendar returns the line's work calendar or nil when none is configured
	Calendar(ctx context.Context, lineID string) (*CalendarRow, error)

	// ChangeoverRules returns the sparse downtime rule set for a line
	ChangeoverRules(ctx context.Context, lineID string) ([]ChangeoverRow, error)
}

// PlanItemRow is one ordered plan row for a line and date
type PlanItemRow struct {
	Seq        int
	Part       string
	PlannedQty int64
	TargetPPH  float64
}

// CalendarRow is the stored work calendar with its break intervals
// clock columns are "HH:MM" strings parsed by the service layer
type CalendarRow struct {
	WorkStart      string
	MeetingMinutes int
	Breaks         []BreakRow
}

// BreakRow is one stored break interval; End before Start wraps past midnight
type BreakRow struct {
	Start string
	End   string
}

// ChangeoverRow is one downtime rule in seconds for a part transition
type ChangeoverRow struct {
	FromPart string
	ToPart   string
	Seconds  int
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) PlanItems(ctx context.Context, lineID, date string) ([]PlanItemRow, error) {
	const sql = `
select seq, part_no, planned_qty, target_pph
from production_plan_items
where line_id = $1
and plan_date = $2
order by seq asc
`
	rows, err := r.q.Query(ctx, sql, lineID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlanItemRow
	for rows.Next() {
		var rr PlanItemRow
		if err := rows.Scan(&rr.Seq, &rr.Part, &rr.PlannedQty, &rr.TargetPPH); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *queries) Calendar(ctx context.Context, lineID string) (*CalendarRow, error) {
	const calSQL = `
select to_char(work_start, 'HH24:MI'), meeting_minutes
from line_work_calendars
where line_id = $1
`
	calRows, err := r.q.Query(ctx, calSQL, lineID)
	if err != nil {
		return nil, err
	}
	defer calRows.Close()
	if !calRows.Next() {
		// absence is not an error; the engine falls back to defaults
		return nil, calRows.Err()
	}
	var cal CalendarRow
	if err := calRows.Scan(&cal.WorkStart, &cal.MeetingMinutes); err != nil {
		return nil, err
	}
	calRows.Close()

	const brkSQL = `
select to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
from line_break_intervals
where line_id = $1
order by start_time asc
`
	rows, err := r.q.Query(ctx, brkSQL, lineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b BreakRow
		if err := rows.Scan(&b.Start, &b.End); err != nil {
			return nil, err
		}
		cal.Breaks = append(cal.Breaks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cal, nil
}

func (r *queries) ChangeoverRules(ctx context.Context, lineID string) ([]ChangeoverRow, error) {
	const sql = `
select from_part, to_part, downtime_s
from changeover_rules
where line_id = $1
`
	rows, err := r.q.Query(ctx, sql, lineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChangeoverRow
	for rows.Next() {
		var rr ChangeoverRow
		if err := rows.Scan(&rr.FromPart, &rr.ToPart, &rr.Seconds); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
