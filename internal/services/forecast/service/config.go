package service

import (
	"time"

	"takt/internal/core/forecast"
	"takt/internal/core/schedule"
	"takt/internal/platform/config"
)

// Config carries the engine knobs that used to drift as duplicated literals
// across the legacy forecast variants; one authoritative default each,
// everything overridable via FORECAST_* env
type Config struct {
	// ChangeoverDefaultSeconds applies when no rule covers a part pair
	ChangeoverDefaultSeconds int

	// ShiftEnd is the delay threshold for IsDelayed
	ShiftEnd schedule.TimeOfDay

	// RateWindow is the trailing window the rate sampler counts over
	RateWindow time.Duration

	// RateClampFactor discards sampled rates above factor x target
	RateClampFactor float64

	// cache TTLs; the current day reflects live production and stays short,
	// past dates never change and can live longer
	TTLToday time.Duration
	TTLPast  time.Duration
}

// FromConfig reads with FORECAST_ prefix
func FromConfig(cfg config.Conf) Config {
	fc := cfg.Prefix("FORECAST_")
	return Config{
		ChangeoverDefaultSeconds: fc.MayInt("CHANGEOVER_DEFAULT_S", forecast.DefaultChangeoverSeconds),
		ShiftEnd:                 schedule.MustTimeOfDay(fc.MayString("SHIFT_END", "17:00")),
		RateWindow:               fc.MayDuration("RATE_WINDOW", 10*time.Minute),
		RateClampFactor:          fc.MayFloat64("RATE_CLAMP_FACTOR", 3),
		TTLToday:                 fc.MayDuration("CACHE_TTL_TODAY", 5*time.Minute),
		TTLPast:                  fc.MayDuration("CACHE_TTL_PAST", time.Hour),
	}
}

// withDefaults fills zero values so tests can hand in partial configs
func (c Config) withDefaults() Config {
	if c.ChangeoverDefaultSeconds <= 0 {
		c.ChangeoverDefaultSeconds = forecast.DefaultChangeoverSeconds
	}
	if c.ShiftEnd == 0 {
		c.ShiftEnd = forecast.DefaultShiftEnd
	}
	if c.RateWindow <= 0 {
		c.RateWindow = 10 * time.Minute
	}
	if c.RateClampFactor <= 0 {
		c.RateClampFactor = 3
	}
	if c.TTLToday <= 0 {
		c.TTLToday = 5 * time.Minute
	}
	if c.TTLPast <= 0 {
		c.TTLPast = time.Hour
	}
	return c
}
