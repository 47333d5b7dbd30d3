package world

import "time"

type Phase string

const (
	PhaseDay   Phase = "day"
	PhaseNight Phase = "night"
)

const HoursPerDay = 24

type ClockConfig struct {
	// HourDuration is the wall-clock length of one simulated hour.
	HourDuration time.Duration
	DawnHour     int
	DuskHour     int
}

// Clock converts wall-clock spans into simulated hours.
type Clock struct {
	cfg ClockConfig
}

func NewClock(cfg ClockConfig) Clock {
	if cfg.HourDuration <= 0 {
		cfg.HourDuration = 2 * time.Second
	}
	if cfg.DawnHour <= 0 || cfg.DawnHour >= HoursPerDay {
		cfg.DawnHour = 6
	}
	if cfg.DuskHour <= cfg.DawnHour || cfg.DuskHour >= HoursPerDay {
		cfg.DuskHour = 20
	}
	return Clock{cfg: cfg}
}

func DefaultClock() Clock {
	return NewClock(ClockConfig{})
}

func (c Clock) HourDuration() time.Duration {
	return c.cfg.HourDuration
}

// Hours splits elapsed into whole simulated hours and the leftover.
func (c Clock) Hours(elapsed time.Duration) (int, time.Duration) {
	if elapsed <= 0 {
		return 0, 0
	}
	n := elapsed / c.cfg.HourDuration
	return int(n), elapsed - n*c.cfg.HourDuration
}

// Duration converts simulated hours back to wall-clock time.
func (c Clock) Duration(hours float64) time.Duration {
	return time.Duration(hours * float64(c.cfg.HourDuration))
}

// PhaseAt reports the phase for a count of simulated hours since the start,
// and how many hours remain in it.
func (c Clock) PhaseAt(hours int) (Phase, int) {
	if hours < 0 {
		hours = 0
	}
	h := hours % HoursPerDay
	switch {
	case h < c.cfg.DawnHour:
		return PhaseNight, c.cfg.DawnHour - h
	case h < c.cfg.DuskHour:
		return PhaseDay, c.cfg.DuskHour - h
	default:
		return PhaseNight, HoursPerDay - h + c.cfg.DawnHour
	}
}

// Day is the one-based simulated day number.
func (c Clock) Day(hours int) int {
	if hours < 0 {
		hours = 0
	}
	return hours/HoursPerDay + 1
}
