// Package calendar isolates month and day boundary rules behind a single
// time-zone aware type, so callers and tests agree on what "this month" means.
package calendar

import (
	"fmt"
	"time"
)

// Calendar evaluates dates in a fixed location. The zero value uses time.Local.
type Calendar struct {
	Location *time.Location
}

// New returns a calendar for the named IANA zone ("Local" and "" mean time.Local).
func New(zone string) (Calendar, error) {
	if zone == "" || zone == "Local" {
		return Calendar{Location: time.Local}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Calendar{}, fmt.Errorf("load location %q: %w", zone, err)
	}
	return Calendar{Location: loc}, nil
}

// In returns a calendar for the given location.
func In(loc *time.Location) Calendar {
	return Calendar{Location: loc}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// SameMonth reports whether a and b fall in the same year and month.
func (c Calendar) SameMonth(a, b time.Time) bool {
	ay, am, _ := a.In(c.loc()).Date()
	by, bm, _ := b.In(c.loc()).Date()
	return ay == by && am == bm
}

// YearMonth returns t's year and month in the calendar's location.
func (c Calendar) YearMonth(t time.Time) (int, time.Month) {
	y, m, _ := t.In(c.loc()).Date()
	return y, m
}

// StartOfDay truncates t to midnight in the calendar's location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc())
}

// DaysInMonth returns the number of days (28-31) in t's month.
func (c Calendar) DaysInMonth(t time.Time) int {
	y, m, _ := t.In(c.loc()).Date()
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, c.loc()).Day()
}

// AddDays moves t by n calendar days, keeping the wall clock time.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	return t.In(c.loc()).AddDate(0, 0, n)
}

// AddMonths moves t by n months. The day is clamped to the target month's length,
// so Jan 31 + 1 month is the last day of February rather than early March.
func (c Calendar) AddMonths(t time.Time, n int) time.Time {
	lt := t.In(c.loc())
	y, m, d := lt.Date()
	first := time.Date(y, m+time.Month(n), 1, lt.Hour(), lt.Minute(), lt.Second(), lt.Nanosecond(), c.loc())
	if last := c.DaysInMonth(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DaysBetween counts whole calendar days from a's day to b's day.
func (c Calendar) DaysBetween(a, b time.Time) int {
	sa := c.StartOfDay(a)
	sb := c.StartOfDay(b)
	ya, ma, da := sa.Date()
	yb, mb, db := sb.Date()
	// Compare as UTC dates so DST transitions do not produce 23 or 25 hour days.
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ParseMonth parses "YYYY-MM" into the first instant of that month.
func (c Calendar) ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, c.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return t, nil
}

// FormatMonth renders t as "YYYY-MM".
func (c Calendar) FormatMonth(t time.Time) string {
	return t.In(c.loc()).Format("2006-01")
}

// ParseDay parses "YYYY-MM-DD" into the start of that day.
func (c Calendar) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, c.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// FormatDay renders t as "YYYY-MM-DD".
func (c Calendar) FormatDay(t time.Time) string {
	return t.In(c.loc()).Format("2006-01-02")
}
