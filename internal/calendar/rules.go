// Package calendar holds the pure scheduling rules: business days and the
// fixed one-hour slot catalogue. Nothing here touches storage.
package calendar

import (
	"fmt"
	"time"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = time.Hour

// baseHours are the bookable starting hours. The 12:00-14:00 gap is lunch.
var baseHours = []int{8, 9, 10, 11, 14, 15, 16, 17}

// IsBusinessDay reports whether t falls on a weekday. There is no holiday
// calendar; Saturdays and Sundays are the only non-business days.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BaseHourSlots returns the ordered catalogue of bookable starting hours.
func BaseHourSlots() []int {
	out := make([]int, len(baseHours))
	copy(out, baseHours)
	return out
}

// IsBaseHour reports whether hour is one of the catalogue starting hours.
func IsBaseHour(hour int) bool {
	for _, h := range baseHours {
		if h == hour {
			return true
		}
	}
	return false
}

// SlotLabel formats a starting hour as HH:00.
func SlotLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// AvailableSlots returns the catalogue hours minus the hours already booked.
// It returns nil when day is not a business day. Blockage is the caller's
// concern: this function only reasons about hours.
func AvailableSlots(day time.Time, bookedHours []int) []int {
	if !IsBusinessDay(day) {
		return nil
	}

	taken := make(map[int]bool, len(bookedHours))
	for _, h := range bookedHours {
		taken[h] = true
	}

	var free []int
	for _, h := range baseHours {
		if !taken[h] {
			free = append(free, h)
		}
	}
	return free
}

// DayOf truncates t to midnight in its own location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At returns the timestamp of the slot starting at hour on the given day.
func At(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysInclusive counts the calendar days in [start, end], both ends
// included (10th to 10th = 1). Computed on UTC dates so it is immune to
// daylight-saving offsets.
func DaysInclusive(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// BusinessDaysBetween returns every business day in [start, end] inclusive.
// The result is empty when end precedes start.
func BusinessDaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for cursor := DayOf(start); !cursor.After(DayOf(end)); cursor = cursor.AddDate(0, 0, 1) {
		if IsBusinessDay(cursor) {
			days = append(days, cursor)
		}
	}
	return days
}
