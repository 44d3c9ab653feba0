package generator

import (
	"fmt"
	"time"
)

// Season is one of the two regular academic terms.
type Season int

const (
	Fall Season = iota + 1
	Spring
)

func (s Season) String() string {
	if s == Spring {
		return "Spring"
	}
	return "Fall"
}

// Semester identifies a term by calendar year and season.
type Semester struct {
	Year   int
	Season Season
}

// String returns the transcript label, e.g. "Fall 2025".
func (s Semester) String() string {
	return fmt.Sprintf("%s %d", s.Season, s.Year)
}

// Next returns the term that follows s.
// Fall Y is followed by Spring Y+1, Spring Y by Fall Y.
func (s Semester) Next() Semester {
	if s.Season == Fall {
		return Semester{Year: s.Year + 1, Season: Spring}
	}
	return Semester{Year: s.Year, Season: Fall}
}

// semestersForDate returns the current and the following term for a date,
// using the US academic calendar:
//   - Aug-Dec: Fall semester in progress
//   - Jan-May: Spring semester in progress
//   - Jun-Jul: summer break, the upcoming Fall is treated as current
//
// Examples:
//   - 2025/03 → Spring 2025, Fall 2025
//   - 2025/07 → Fall 2025, Spring 2026
//   - 2025/10 → Fall 2025, Spring 2026
func semestersForDate(date time.Time) (Semester, Semester) {
	year := date.Year()
	month := date.Month()

	var current Semester
	switch {
	case month >= time.August:
		current = Semester{Year: year, Season: Fall}
	case month <= time.May:
		current = Semester{Year: year, Season: Spring}
	default:
		current = Semester{Year: year, Season: Fall}
	}

	return current, current.Next()
}
