package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day in minutes since midnight.
type Clock int

const MinutesPerDay = 24 * 60

// ParseClock parses an "HH:MM" value. Hours up to 24 are accepted so "24:00" can close a day.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q (expected HH:MM)", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid clock time %q (hour out of range)", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock time %q (minute out of range)", s)
	}
	return Clock(h*60 + m), nil
}

func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Span returns the minutes between start and end. An end at or before start is
// treated as running past midnight.
func Span(start, end Clock) int {
	if end <= start {
		return int(end) + MinutesPerDay - int(start)
	}
	return int(end - start)
}

type DueKind int

const (
	DueContinuous DueKind = iota
	DueEndOfDay
	DueAt
)

const (
	DueTokenEndOfDay   = "end_of_day"
	DueTokenContinuous = "continuous"
)

// Due is a task deadline: a clock time, end of day, or none.
type Due struct {
	Kind DueKind
	At   Clock
}

func DueBy(at Clock) Due {
	return Due{Kind: DueAt, At: at}
}

func ParseDue(s string) (Due, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", DueTokenContinuous:
		return Due{Kind: DueContinuous}, nil
	case DueTokenEndOfDay:
		return Due{Kind: DueEndOfDay}, nil
	}
	at, err := ParseClock(s)
	if err != nil {
		return Due{}, fmt.Errorf("invalid due value %q: %w", s, err)
	}
	return DueBy(at), nil
}

func (d Due) String() string {
	switch d.Kind {
	case DueAt:
		return d.At.String()
	case DueEndOfDay:
		return DueTokenEndOfDay
	default:
		return DueTokenContinuous
	}
}

type RecurrenceKind string

const (
	RecurrenceDaily  RecurrenceKind = "daily"
	RecurrenceOnce   RecurrenceKind = "once"
	RecurrenceWeekly RecurrenceKind = "weekly"
)

type Recurrence struct {
	Kind    RecurrenceKind
	Weekday time.Weekday // weekly only
	On      string       // once only, optional date
}

// Applies reports whether a task with this recurrence runs on the given date.
func (r Recurrence) Applies(date time.Time) bool {
	switch r.Kind {
	case RecurrenceWeekly:
		return date.Weekday() == r.Weekday
	case RecurrenceOnce:
		return r.On == "" || r.On == date.Format(DateLayout)
	default:
		return true
	}
}

// ParseRecurrence accepts "daily", "once", "once:2025-01-15" and "weekly:tuesday".
func ParseRecurrence(s string) (Recurrence, error) {
	kind, arg, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch RecurrenceKind(kind) {
	case "", RecurrenceDaily:
		return Recurrence{Kind: RecurrenceDaily}, nil
	case RecurrenceOnce:
		if arg != "" {
			if _, err := time.Parse(DateLayout, arg); err != nil {
				return Recurrence{}, fmt.Errorf("invalid recurrence %q: %w", s, err)
			}
		}
		return Recurrence{Kind: RecurrenceOnce, On: arg}, nil
	case RecurrenceWeekly:
		wd, err := ParseWeekday(arg)
		if err != nil {
			return Recurrence{}, fmt.Errorf("invalid recurrence %q: %w", s, err)
		}
		return Recurrence{Kind: RecurrenceWeekly, Weekday: wd}, nil
	}
	return Recurrence{}, fmt.Errorf("unknown recurrence %q", s)
}

func (r Recurrence) String() string {
	switch r.Kind {
	case RecurrenceWeekly:
		return fmt.Sprintf("%s:%s", RecurrenceWeekly, strings.ToLower(r.Weekday.String()))
	case RecurrenceOnce:
		if r.On != "" {
			return fmt.Sprintf("%s:%s", RecurrenceOnce, r.On)
		}
		return string(RecurrenceOnce)
	default:
		return string(RecurrenceDaily)
	}
}

func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && s == name[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// taskNumberPattern matches a leading T-number such as "T3", "t12" or "T-07 Open store".
var taskNumberPattern = regexp.MustCompile(`^[Tt]-?(\d+)`)

// ParseTaskNumber extracts the numeric part of a task code like "T3".
func ParseTaskNumber(code string) (int, bool) {
	match := taskNumberPattern.FindStringSubmatch(strings.TrimSpace(code))
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
