package service

import (
	"fmt"
	"regexp"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// parseClock converts an "HH:MM" wall-clock string to minutes past midnight.
func parseClock(raw string) (int, bool) {
	if !clockPattern.MatchString(raw) {
		return 0, false
	}
	hours := int(raw[0]-'0')*10 + int(raw[1]-'0')
	minutes := int(raw[3]-'0')*10 + int(raw[4]-'0')
	return hours*60 + minutes, true
}

func validClock(raw string) bool {
	_, ok := parseClock(raw)
	return ok
}

func minutesToClock(total int) string {
	if total < 0 {
		total = 0
	}
	total %= 24 * 60
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// rangesOverlap reports whether two half-open minute intervals intersect.
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// slotWindow resolves a slot's minute interval. Malformed clock strings
// yield ok=false and the slot is skipped by pairwise scans.
func slotWindow(slot models.TimeSlot) (start, end int, ok bool) {
	start, okStart := parseClock(slot.StartTime)
	end, okEnd := parseClock(slot.EndTime)
	if !okStart || !okEnd || start >= end {
		return 0, 0, false
	}
	return start, end, true
}

func slotsOverlap(a, b models.TimeSlot) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	aStart, aEnd, ok := slotWindow(a)
	if !ok {
		return false
	}
	bStart, bEnd, ok := slotWindow(b)
	if !ok {
		return false
	}
	return rangesOverlap(aStart, aEnd, bStart, bEnd)
}

// samePeriod restricts comparisons to the same academic year and semester.
func samePeriod(a, b models.TimeSlot) bool {
	return a.AcademicYear == b.AcademicYear && a.Semester == b.Semester
}

// exemptFromCheck is the single group-exemption predicate consulted by every
// pairwise check. Slots of the same joint group may share everything; slots
// of the same split group may share their course and cohort but still must
// not double-book a faculty member or room.
func exemptFromCheck(a, b models.TimeSlot, category models.ConstraintCategory) bool {
	if a.GroupID == "" || a.GroupID != b.GroupID || a.GroupType != b.GroupType {
		return false
	}
	switch a.GroupType {
	case models.GroupJoint:
		return true
	case models.GroupSplit:
		return category == models.CategoryCourse || category == models.CategoryStudent
	default:
		return false
	}
}

func cloneSlots(slots []models.TimeSlot) []models.TimeSlot {
	out := make([]models.TimeSlot, len(slots))
	copy(out, slots)
	return out
}
