package model

import (
	"errors"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format used by the stores
	DateLayout = "2006-01-02"
	// MonthLayout is the bucket key format
	MonthLayout = "2006-01"
)

var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate accepts plain dates and the timestamp formats older records use
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// MonthKey returns the YYYY-MM bucket key of t
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ValidMonthKey reports whether s is a well-formed YYYY-MM key
func ValidMonthKey(s string) bool {
	if len(s) != len(MonthLayout) {
		return false
	}
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// ParseMonthKey returns the first day of the month named by key
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
