// Package clock supplies the current instant and the calendar day used for
// quota resets and streak continuity. Every day comparison in the engine goes
// through an injected Clock so tests can control day boundaries.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// DayLayout is the canonical day-string layout.
const DayLayout = "2006-01-02"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Day is a canonical calendar-day string such as "2026-10-18".
type Day string

// DayOf returns the day-string of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// Today returns the current day according to c.
func Today(c Clock) Day {
	return DayOf(c.Now())
}

// ParseDay validates and parses a day-string.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

// Time returns midnight UTC of the day. Invalid days yield the zero time.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day n calendar days after d (n may be negative).
// Invalid days are returned unchanged.
func (d Day) AddDays(n int) Day {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return DayOf(t.AddDate(0, 0, n))
}

// Prev returns the previous calendar day.
func (d Day) Prev() Day {
	return d.AddDays(-1)
}

// String implements fmt.Stringer.
func (d Day) String() string {
	return string(d)
}

// System reads the wall clock in a fixed location.
type System struct {
	Location *time.Location
}

// NewSystem returns a System clock for the named IANA time zone.
// An empty name selects UTC.
func NewSystem(timezone string) (*System, error) {
	if timezone == "" {
		return &System{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", timezone, err)
	}
	return &System{Location: loc}, nil
}

// Now implements Clock.
func (s *System) Now() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Fixed is a clock frozen at one instant.
type Fixed time.Time

// Now implements Clock.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock set to now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// AdvanceDays moves the clock forward by n calendar days.
func (m *Manual) AdvanceDays(n int) {
	m.mu.Lock()
	m.now = m.now.AddDate(0, 0, n)
	m.mu.Unlock()
}
