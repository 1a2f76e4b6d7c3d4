package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"takt/internal/platform/store"
)

type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (f *fakeRows) Next() bool { f.i++; return f.i <= len(f.data) }

func (f *fakeRows) Scan(dest ...any) error {
	row := f.data[f.i-1]
	for j, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = row[j].(int)
		case *int64:
			*p = row[j].(int64)
		case *uint64:
			*p = row[j].(uint64)
		case *float64:
			*p = row[j].(float64)
		case *string:
			*p = row[j].(string)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func (f *fakeRows) Err() error        { return f.err }
func (f *fakeRows) Close()            {}
func (f *fakeRows) Columns() []string { return nil }

// fakeQueryer routes queries to canned result sets by table name
type fakeQueryer struct {
	plan  [][]any
	cal   [][]any
	brks  [][]any
	rules [][]any

	failOn string
	args   [][]any
}

func (f *fakeQueryer) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, errors.New("read only")
}

func (f *fakeQueryer) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (f *fakeQueryer) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.args = append(f.args, args)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return nil, errors.New("query failed")
	}
	switch {
	case strings.Contains(sql, "production_plan_items"):
		return &fakeRows{data: f.plan}, nil
	case strings.Contains(sql, "line_work_calendars"):
		return &fakeRows{data: f.cal}, nil
	case strings.Contains(sql, "line_break_intervals"):
		return &fakeRows{data: f.brks}, nil
	case strings.Contains(sql, "changeover_rules"):
		return &fakeRows{data: f.rules}, nil
	}
	return nil, errors.New("unexpected query: " + sql)
}

func TestPlanItems(t *testing.T) {
	q := &fakeQueryer{plan: [][]any{
		{1, "A", int64(100), 60.0},
		{2, "B", int64(50), 45.5},
	}}
	r := NewPG().Bind(q)

	got, err := r.PlanItems(context.Background(), "L1", "2025-06-02")
	if err != nil {
		t.Fatalf("PlanItems: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d want 2", len(got))
	}
	if got[0].Seq != 1 || got[0].Part != "A" || got[0].PlannedQty != 100 || got[0].TargetPPH != 60 {
		t.Fatalf("first row = %+v", got[0])
	}
	if got[1].TargetPPH != 45.5 {
		t.Fatalf("second row = %+v", got[1])
	}
	if len(q.args) != 1 || q.args[0][0] != "L1" || q.args[0][1] != "2025-06-02" {
		t.Fatalf("query args = %+v", q.args)
	}
}

func TestPlanItems_QueryError(t *testing.T) {
	q := &fakeQueryer{failOn: "production_plan_items"}
	r := NewPG().Bind(q)

	if _, err := r.PlanItems(context.Background(), "L1", "2025-06-02"); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestCalendar_AbsentIsNil(t *testing.T) {
	q := &fakeQueryer{}
	r := NewPG().Bind(q)

	cal, err := r.Calendar(context.Background(), "L1")
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if cal != nil {
		t.Fatalf("expected nil calendar for unconfigured line, got %+v", cal)
	}
}

func TestCalendar_WithBreaks(t *testing.T) {
	q := &fakeQueryer{
		cal: [][]any{{"08:30", 15}},
		brks: [][]any{
			{"10:00", "10:10"},
			{"12:00", "12:45"},
		},
	}
	r := NewPG().Bind(q)

	cal, err := r.Calendar(context.Background(), "L1")
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if cal == nil {
		t.Fatalf("expected calendar row")
	}
	if cal.WorkStart != "08:30" || cal.MeetingMinutes != 15 {
		t.Fatalf("calendar = %+v", cal)
	}
	if len(cal.Breaks) != 2 || cal.Breaks[1].End != "12:45" {
		t.Fatalf("breaks = %+v", cal.Breaks)
	}
}

func TestCalendar_BreakQueryError(t *testing.T) {
	q := &fakeQueryer{
		cal:    [][]any{{"08:30", 15}},
		failOn: "line_break_intervals",
	}
	r := NewPG().Bind(q)

	if _, err := r.Calendar(context.Background(), "L1"); err == nil {
		t.Fatalf("expected break query error")
	}
}

func TestChangeoverRules(t *testing.T) {
	q := &fakeQueryer{rules: [][]any{
		{"A", "B", 1800},
		{"B", "C", 300},
	}}
	r := NewPG().Bind(q)

	got, err := r.ChangeoverRules(context.Background(), "L1")
	if err != nil {
		t.Fatalf("ChangeoverRules: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d want 2", len(got))
	}
	if got[0].FromPart != "A" || got[0].ToPart != "B" || got[0].Seconds != 1800 {
		t.Fatalf("first rule = %+v", got[0])
	}
}
