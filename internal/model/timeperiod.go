package model

import "time"

// LogTimePeriod is the inclusive [StartTime, EndTime] window a query covers.
type LogTimePeriod struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// NewLogTimePeriod builds a period from optional bounds. If either bound is
// missing, both are recomputed from a single reading of now: the last 24 hours.
func NewLogTimePeriod(start, end *time.Time, now time.Time) LogTimePeriod {
	if start == nil || end == nil {
		return LogTimePeriod{StartTime: now.AddDate(0, 0, -1), EndTime: now}
	}
	return LogTimePeriod{StartTime: *start, EndTime: *end}
}

// Contains reports whether t falls within the period, bounds included.
func (p LogTimePeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartTime) && !t.After(p.EndTime)
}

// CoversDay reports whether the calendar date of day, read in the start
// time's location, lies between the dates of the two bounds.
func (p LogTimePeriod) CoversDay(day time.Time) bool {
	loc := p.StartTime.Location()
	d := midnight(day.In(loc))
	return !d.Before(midnight(p.StartTime)) && !d.After(midnight(p.EndTime.In(loc)))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
