package models

import (
	"strings"
	"time"
)

// timePair holds a scheduled and a real-time timestamp as sent by the API
type timePair struct {
	sched *time.Time
	rt    *time.Time
}

func parseTimePair(sched, rt string, loc *time.Location) timePair {
	return timePair{
		sched: parseOptionalTime(sched, loc),
		rt:    parseOptionalTime(rt, loc),
	}
}

// effective returns the real-time value when known, else the scheduled one
func (p timePair) effective() *time.Time {
	if p.rt != nil {
		return p.rt
	}
	return p.sched
}

// delay returns the difference in whole minutes, 0 if either side is unknown
func (p timePair) delay() int {
	if p.sched == nil || p.rt == nil {
		return 0
	}
	return int(p.rt.Sub(*p.sched).Minutes())
}

func parseOptionalTime(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	t, err := parseTime(s, loc)
	if err != nil {
		return nil
	}
	return &t
}

// parseTime parses "2006-01-02T15:04:05", ignoring any zone suffix; the
// API always reports local station time.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	if idx := strings.Index(s, "+"); idx > 0 {
		s = s[:idx]
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, loc)
}
