// Package pregnancy derives gestational progress from a reference date.
//
// Two rule sets live here and are not interchangeable: the LMP rules
// (280-day term, trimesters split at weeks 13/27 inclusive) drive user
// profiles, and the conception rules (266-day term, trimesters split at
// 12/26) back the conception calculator.
package pregnancy

import (
	"math"
	"time"
)

const (
	LMPTermDays        = 280
	ConceptionTermDays = 266
	TermWeeks          = 40

	dateLayout = "2006-01-02"
)

// Progress is the LMP-based summary shown on a profile. All fields are nil
// when no LMP is known.
type Progress struct {
	WeeksPregnant   *int    `json:"weeksPregnant"`
	Trimester       *string `json:"trimester"`
	ProgressPercent *int    `json:"progressPercent"`
}

// ConceptionProgress is the conception-based summary. Trimester is 1, 2 or 3,
// or 0 when no conception date is known.
type ConceptionProgress struct {
	PregnancyWeek  int        `json:"pregnancyWeek"`
	Trimester      int        `json:"trimester"`
	DaysPregnant   int        `json:"daysPregnant"`
	WeeksRemaining int        `json:"weeksRemaining"`
	DueDate        *time.Time `json:"dueDate"`
}

// ParseDate reads a calendar date given as "2006-01-02" or as an RFC 3339
// timestamp and returns midnight UTC of that date as written, so a client's
// local offset never moves the day.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DaysBetween counts calendar days from `from` to `to`, each taken on its own
// wall-clock date. It is negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DueDateFromLMP returns lmp + 280 days.
func DueDateFromLMP(lmp time.Time) time.Time {
	return lmp.AddDate(0, 0, LMPTermDays)
}

// DueDateFromConception returns conception + 266 days.
func DueDateFromConception(conception time.Time) time.Time {
	return conception.AddDate(0, 0, ConceptionTermDays)
}

// WeeksSinceLMP is floor(days/7).
func WeeksSinceLMP(lmp, now time.Time) int {
	return floorDiv(DaysBetween(lmp, now), 7)
}

// TrimesterFromLMPWeeks buckets weeks as <=13 "1st", <=27 "2nd", else "3rd".
func TrimesterFromLMPWeeks(weeks int) string {
	switch {
	case weeks <= 13:
		return "1st"
	case weeks <= 27:
		return "2nd"
	}
	return "3rd"
}

// ProgressPercent is min(round_half_up(weeks/40*100), 100).
func ProgressPercent(weeks int) int {
	p := int(math.Floor(float64(weeks)*100/TermWeeks + 0.5))
	if p > 100 {
		return 100
	}
	return p
}

// ProgressFromLMP summarises an LMP-dated pregnancy as of now.
func ProgressFromLMP(lmp *time.Time, now time.Time) Progress {
	if lmp == nil || lmp.IsZero() {
		return Progress{}
	}
	weeks := WeeksSinceLMP(*lmp, now)
	trimester := TrimesterFromLMPWeeks(weeks)
	percent := ProgressPercent(weeks)
	return Progress{WeeksPregnant: &weeks, Trimester: &trimester, ProgressPercent: &percent}
}

// TrimesterFromConceptionWeek buckets weeks as 13-26 -> 2, >=27 -> 3, else 1.
func TrimesterFromConceptionWeek(week int) int {
	switch {
	case week >= 27:
		return 3
	case week >= 13:
		return 2
	}
	return 1
}

// FromConception summarises a conception-dated pregnancy as of now.
func FromConception(conception *time.Time, now time.Time) ConceptionProgress {
	if conception == nil || conception.IsZero() {
		return ConceptionProgress{WeeksRemaining: TermWeeks}
	}
	days := DaysBetween(*conception, now)
	week := floorDiv(days, 7)
	remaining := TermWeeks - week
	if remaining < 0 {
		remaining = 0
	}
	due := DueDateFromConception(*conception)
	return ConceptionProgress{
		PregnancyWeek:  week,
		Trimester:      TrimesterFromConceptionWeek(week),
		DaysPregnant:   days,
		WeeksRemaining: remaining,
		DueDate:        &due,
	}
}

// DaysRemaining counts calendar days until dueDate, never negative.
func DaysRemaining(dueDate *time.Time, now time.Time) *int {
	if dueDate == nil || dueDate.IsZero() {
		return nil
	}
	d := DaysBetween(now, *dueDate)
	if d < 0 {
		d = 0
	}
	return &d
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
