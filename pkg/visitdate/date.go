package visitdate

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the calendar-day format used throughout the system.
// Lexicographic comparison of dates in this layout matches chronological order.
const Layout = "2006-01-02"

var (
	// ErrEmptyDate indicates the date string is empty
	ErrEmptyDate = errors.New("date cannot be empty")

	// ErrInvalidFormat indicates the date is not a valid YYYY-MM-DD calendar day
	ErrInvalidFormat = errors.New("date must be a valid YYYY-MM-DD calendar day")
)

// Validate checks that date is a well-formed ISO calendar day.
// Returns the normalized date string and an error if invalid.
func Validate(date string) (string, error) {
	if date == "" {
		return "", ErrEmptyDate
	}

	t, err := time.Parse(Layout, date)
	if err != nil {
		return "", ErrInvalidFormat
	}

	// Reject inputs that parse but are not canonical (e.g. "2024-6-1")
	normalized := t.Format(Layout)
	if normalized != date {
		return "", ErrInvalidFormat
	}

	return normalized, nil
}

// Today returns the current calendar day in the system layout
func Today() string {
	return time.Now().Format(Layout)
}

// MonthDates returns every calendar day of the given month, in order.
func MonthDates(year int, month time.Month) ([]string, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month: %d", month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var dates []string
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(Layout))
	}
	return dates, nil
}
