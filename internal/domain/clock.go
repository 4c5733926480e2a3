package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of the per-date storage keys and CLI date arguments.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds task start times.
const MinutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("invalid HH:MM time")

// ParseClock parses a canonical 24-hour "HH:MM" time into minutes after midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour*60 + minute, nil
}

// NormalizeClock accepts user input such as " 9:05" and returns the
// canonical "HH:MM" form that is stored.
func NormalizeClock(s string) (string, error) {
	c := strings.TrimSpace(s)
	if len(c) == 4 && c[1] == ':' {
		c = "0" + c
	}
	n, err := ParseClock(c)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return FormatClock(n), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ClockMinutes is ParseClock for sorting and layout: unparseable times count as 0.
func ClockMinutes(s string) int {
	n, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return n
}

// FormatClock renders minutes after midnight as "HH:MM", clamped to the day.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes >= MinutesPerDay {
		minutes = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DateKey formats t as a local calendar date.
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// DaysBetween counts calendar days from a to b (negative if b is earlier).
// Calendar arithmetic avoids DST-length days skewing the count.
func DaysBetween(a, b time.Time) int {
	a, b = a.In(time.Local), b.In(time.Local)
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
