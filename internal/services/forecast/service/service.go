// Package service contains the forecast workflows: snapshot assembly,
// cache front, and the mapping to wire DTOs
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"takt/internal/core/forecast"
	"takt/internal/core/schedule"
	"takt/internal/modkit/repokit"
	perr "takt/internal/platform/errors"
	"takt/internal/platform/logger"
	"takt/internal/services/forecast/domain"
	"takt/internal/services/forecast/repo"
)

const dateLayout = "2006-01-02"

// Service defines the forecast service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the forecast service
// all blocking I/O happens here while assembling the snapshot; the core
// calculator below it is pure
type Svc struct {
	Repo   repo.Repo
	Events repo.Events
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	cfg    Config
	cache  *forecastCache
	loc    *time.Location

	// now is a seam for tests; production uses time.Now
	now func() time.Time
}

// New constructs a forecast service
func New(db repokit.TxRunner, events repo.Events, binder repokit.Binder[repo.Repo], cfg Config) *Svc {
	if db == nil {
		panic("forecast.Service requires a non nil TxRunner")
	}
	if events == nil {
		panic("forecast.Service requires a non nil Events reader")
	}
	if binder == nil {
		panic("forecast.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo:   binder.Bind(db),
		Events: events,
		binder: binder,
		db:     db,
		cfg:    cfg.withDefaults(),
		cache:  newForecastCache(),
		loc:    time.Local,
		now:    time.Now,
	}
}

// Get returns the cached or freshly computed forecast for a line and date
// computation failures are carried inside the row, never returned as errors
func (s *Svc) Get(ctx context.Context, in domain.GetInput) (domain.ForecastRow, error) {
	date, err := time.ParseInLocation(dateLayout, in.Date, s.loc)
	if err != nil {
		return domain.ForecastRow{}, perr.InvalidArgf("malformed date %q", in.Date)
	}

	key := cacheKey{LineID: in.LineID, Date: in.Date}
	now := s.now()
	if f, ok := s.cache.get(key, now); ok {
		return toRow(f), nil
	}

	f := s.compute(ctx, in.LineID, in.Date, date, now)
	s.cache.put(key, f, now.Add(s.ttlFor(in.Date, now)))
	return toRow(f), nil
}

// Invalidate drops the cached forecast for a line and date
// called by the ingestion side on plan, result, calendar or changeover edits
func (s *Svc) Invalidate(_ context.Context, in domain.InvalidateInput) error {
	if _, err := time.ParseInLocation(dateLayout, in.Date, s.loc); err != nil {
		return perr.InvalidArgf("malformed date %q", in.Date)
	}
	s.cache.invalidate(cacheKey{LineID: in.LineID, Date: in.Date})
	return nil
}

// ttlFor keeps the live day fresh and lets settled days linger
func (s *Svc) ttlFor(date string, now time.Time) time.Duration {
	if now.In(s.loc).Format(dateLayout) == date {
		return s.cfg.TTLToday
	}
	return s.cfg.TTLPast
}

// compute assembles the snapshot from the plan, actuals, calendar and
// changeover sources and runs the pure calculator over it
// every failure path degrades to a stamped error forecast
func (s *Svc) compute(ctx context.Context, lineID, dateStr string, date, asOf time.Time) forecast.Forecast {
	log := logger.C(ctx)

	cal, err := s.loadCalendar(ctx, lineID)
	if err != nil {
		log.Warn().Err(err).Str("line", lineID).Msg("calendar load failed")
		return s.failed(lineID, date, asOf, err)
	}

	plan, err := s.Repo.PlanItems(ctx, lineID, dateStr)
	if err != nil {
		log.Warn().Err(err).Str("line", lineID).Str("date", dateStr).Msg("plan load failed")
		return s.failed(lineID, date, asOf, err)
	}

	snap := forecast.Snapshot{
		LineID:                   lineID,
		Date:                     date,
		AsOf:                     asOf,
		Calendar:                 cal,
		PlanCount:                len(plan),
		ChangeoverDefaultSeconds: s.cfg.ChangeoverDefaultSeconds,
		ShiftEnd:                 s.cfg.ShiftEnd,
	}
	if len(plan) == 0 {
		return s.stamp(forecast.Compute(snap), asOf)
	}

	dayFrom, dayTo := cal.DayWindow(date)
	actuals, err := s.Events.AcceptedCounts(ctx, lineID, dayFrom, dayTo)
	if err != nil {
		log.Warn().Err(err).Str("line", lineID).Msg("actuals load failed")
		return s.failed(lineID, date, asOf, err)
	}
	recent, err := s.Events.AcceptedCounts(ctx, lineID, asOf.Add(-s.cfg.RateWindow), asOf)
	if err != nil {
		log.Warn().Err(err).Str("line", lineID).Msg("rate window load failed")
		return s.failed(lineID, date, asOf, err)
	}

	items, planned, actual := buildRemaining(plan, actuals, recent)
	snap.Items = items
	snap.PlannedTotal = planned
	snap.ActualTotal = actual

	for _, it := range items {
		if it.InProduction {
			snap.CurrentRatePPH = sampleRate(recent[it.Part], s.cfg.RateWindow, it.TargetPPH, s.cfg.RateClampFactor)
			break
		}
	}

	rules, err := s.Repo.ChangeoverRules(ctx, lineID)
	if err != nil {
		log.Warn().Err(err).Str("line", lineID).Msg("changeover rules load failed")
		return s.failed(lineID, date, asOf, err)
	}
	if len(rules) > 0 {
		snap.Changeovers = make(map[forecast.ChangeoverKey]int, len(rules))
		for _, r := range rules {
			snap.Changeovers[forecast.ChangeoverKey{From: r.FromPart, To: r.ToPart}] = r.Seconds
		}
	}

	return s.stamp(forecast.Compute(snap), asOf)
}

// loadCalendar fetches and parses the line calendar, defaulting when absent
func (s *Svc) loadCalendar(ctx context.Context, lineID string) (schedule.WorkCalendar, error) {
	row, err := s.Repo.Calendar(ctx, lineID)
	if err != nil {
		return schedule.WorkCalendar{}, err
	}
	if row == nil {
		return schedule.Default(), nil
	}

	start, err := schedule.ParseTimeOfDay(row.WorkStart)
	if err != nil {
		return schedule.WorkCalendar{}, err
	}
	cal := schedule.WorkCalendar{WorkStart: start, MeetingMinutes: row.MeetingMinutes}
	for _, b := range row.Breaks {
		bs, err := schedule.ParseTimeOfDay(b.Start)
		if err != nil {
			return schedule.WorkCalendar{}, err
		}
		be, err := schedule.ParseTimeOfDay(b.End)
		if err != nil {
			return schedule.WorkCalendar{}, err
		}
		cal.Breaks = append(cal.Breaks, schedule.BreakInterval{Start: bs, End: be})
	}
	return cal, cal.Validate()
}

// failed builds the ERROR-state forecast for upstream data failures
func (s *Svc) failed(lineID string, date, asOf time.Time, err error) forecast.Forecast {
	return s.stamp(forecast.Forecast{
		LineID:       lineID,
		Date:         date,
		ErrorMessage: err.Error(),
	}, asOf)
}

// stamp attaches the non-deterministic identity fields after computation
func (s *Svc) stamp(f forecast.Forecast, asOf time.Time) forecast.Forecast {
	f.CalculationID = uuid.New()
	f.CalculatedAt = asOf
	return f
}

// toRow maps the core forecast onto the wire DTO
func toRow(f forecast.Forecast) domain.ForecastRow {
	row := domain.ForecastRow{
		LineID:         f.LineID,
		Date:           f.Date.Format(dateLayout),
		IsDelayed:      f.IsDelayed,
		IsNextDay:      f.IsNextDay,
		Confidence:     f.Confidence,
		CurrentRatePPH: f.CurrentRatePPH,
		PlannedQty:     f.PlannedTotal,
		ActualQty:      f.ActualTotal,
		CalculationID:  f.CalculationID.String(),
		CalculatedAt:   f.CalculatedAt,
		ErrorMessage:   f.ErrorMessage,
	}
	if f.CompletionTime != nil {
		t := *f.CompletionTime
		row.CompletionAt = &t
		row.CompletionClock = t.Format("15:04")
	}
	return row
}
