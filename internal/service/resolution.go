package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/errors"
)

// canonicalStartTimes are the teaching-block starts tried when moving a slot
// within its day. The midday gap is left for lunch.
var canonicalStartTimes = []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// generateSuggestions proposes fixes for one conflict. Every structural
// proposal is simulated against a copy of the roster first; infeasible moves
// are never suggested. Results are ranked by success probability per unit of
// impact and capped at the configured maximum.
func (r *ScheduleResolver) generateSuggestions(conflict models.EnhancedConflict, slots []models.TimeSlot, refs models.ReferenceSet) []models.ResolutionSuggestion {
	var suggestions []models.ResolutionSuggestion

	switch conflict.Type {
	case models.ConflictRoomOverlap, models.ConflictFacultyOverlap,
		models.ConflictCourseDuplicate, models.ConflictStudentOverlap:
		suggestions = r.structuralSuggestions(conflict, slots, refs)
	case models.ConflictRoomTypeMismatch, models.ConflictRoomCapacity:
		suggestions = r.alternateRoomSuggestions(conflict, slots, refs)
	case models.ConflictTightSchedule:
		suggestions = r.relaxSuggestions(conflict)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestionRank(suggestions[i]) > suggestionRank(suggestions[j])
	})
	if len(suggestions) > r.cfg.MaxSuggestions {
		suggestions = suggestions[:r.cfg.MaxSuggestions]
	}
	return suggestions
}

func suggestionRank(s models.ResolutionSuggestion) float64 {
	return s.SuccessProbability / (s.ImpactScore + 1)
}

// structuralSuggestions tries to move the first affected slot to another
// start time or day, then to swap it with a compatible slot.
func (r *ScheduleResolver) structuralSuggestions(conflict models.EnhancedConflict, slots []models.TimeSlot, refs models.ReferenceSet) []models.ResolutionSuggestion {
	if len(conflict.AffectedSlots) == 0 {
		return nil
	}
	target, ok := findSlot(slots, conflict.AffectedSlots[0])
	if !ok {
		return nil
	}
	start, end, okWindow := slotWindow(target)
	if !okWindow {
		return nil
	}
	duration := end - start

	var out []models.ResolutionSuggestion

	// Same-day moves across the canonical teaching blocks.
	for i, candidate := range canonicalStartTimes {
		newStart, _ := parseClock(candidate)
		if newStart == start {
			continue
		}
		newEnd := newStart + duration
		if newEnd > 18*60 {
			continue
		}
		moved := target
		moved.StartTime = candidate
		moved.EndTime = minutesToClock(newEnd)
		if !r.placementClear(moved, slots, refs) {
			continue
		}
		out = append(out, models.ResolutionSuggestion{
			Description: fmt.Sprintf("Move the session to %s on the same day", candidate),
			Actions: []models.ResolutionAction{{
				Kind:         models.ActionMove,
				SlotID:       target.ID,
				NewDayOfWeek: target.DayOfWeek,
				NewStartTime: moved.StartTime,
				NewEndTime:   moved.EndTime,
			}},
			ImpactScore:        10 + float64(i),
			SuccessProbability: 0.9 - 0.02*float64(i),
		})
	}

	// Day moves at the same wall-clock window.
	for day := 1; day <= 6; day++ {
		if day == target.DayOfWeek {
			continue
		}
		moved := target
		moved.DayOfWeek = day
		if !r.placementClear(moved, slots, refs) {
			continue
		}
		out = append(out, models.ResolutionSuggestion{
			Description: fmt.Sprintf("Move the session to day %d at the same time", day),
			Actions: []models.ResolutionAction{{
				Kind:         models.ActionMove,
				SlotID:       target.ID,
				NewDayOfWeek: day,
				NewStartTime: target.StartTime,
				NewEndTime:   target.EndTime,
			}},
			ImpactScore:        15 + float64(day),
			SuccessProbability: 0.75,
		})
	}

	// A swap with one compatible slot: both sides must land clear.
	for _, partner := range slots {
		if partner.ID == "" || partner.ID == target.ID || containsString(conflict.AffectedSlots, partner.ID) {
			continue
		}
		if !samePeriod(target, partner) {
			continue
		}
		if partner.DayOfWeek == target.DayOfWeek && partner.StartTime == target.StartTime {
			continue
		}
		movedTarget := target
		movedTarget.DayOfWeek = partner.DayOfWeek
		movedTarget.StartTime = partner.StartTime
		movedTarget.EndTime = partner.EndTime
		movedPartner := partner
		movedPartner.DayOfWeek = target.DayOfWeek
		movedPartner.StartTime = target.StartTime
		movedPartner.EndTime = target.EndTime

		trial := cloneSlots(slots)
		replaceSlot(trial, movedTarget)
		replaceSlot(trial, movedPartner)
		if !r.placementClear(movedTarget, trial, refs) || !r.placementClear(movedPartner, trial, refs) {
			continue
		}
		out = append(out, models.ResolutionSuggestion{
			Description: fmt.Sprintf("Swap time windows with slot %s", partner.ID),
			Actions: []models.ResolutionAction{{
				Kind:       models.ActionSwap,
				SlotID:     target.ID,
				SwapSlotID: partner.ID,
			}},
			ImpactScore:        25,
			SuccessProbability: 0.6,
		})
		break
	}

	return out
}

// alternateRoomSuggestions proposes up to three free rooms ranked by fit:
// lab match first, then the tightest sufficient capacity.
func (r *ScheduleResolver) alternateRoomSuggestions(conflict models.EnhancedConflict, slots []models.TimeSlot, refs models.ReferenceSet) []models.ResolutionSuggestion {
	if len(conflict.AffectedSlots) == 0 {
		return nil
	}
	target, ok := findSlot(slots, conflict.AffectedSlots[0])
	if !ok {
		return nil
	}
	course, hasCourse := refs.Courses[target.CourseID]

	needsLab := hasCourse && course.RequiresLab
	needed := 0
	if hasCourse {
		needed = course.StudentCount
	}
	if needed == 0 && target.LessonKind == models.LessonLecture {
		needed = minLectureRoomCapacity
	}

	// Map iteration order is random; rank over a sorted view.
	rooms := make([]models.Room, 0, len(refs.Rooms))
	for _, room := range refs.Rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	type rankedRoom struct {
		room models.Room
		fit  int
	}
	var candidates []rankedRoom
	for _, room := range rooms {
		if room.ID == target.RoomID {
			continue
		}
		if needsLab && !room.IsLab {
			continue
		}
		if needed > 0 && room.Capacity < needed {
			continue
		}
		moved := target
		moved.RoomID = room.ID
		if !r.placementClear(moved, slots, refs) {
			continue
		}
		fit := 0
		if room.IsLab == needsLab {
			fit += 1000
		}
		// Prefer the smallest room that still fits.
		fit -= room.Capacity
		candidates = append(candidates, rankedRoom{room: room, fit: fit})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].fit > candidates[j].fit })
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	var out []models.ResolutionSuggestion
	for i, c := range candidates {
		out = append(out, models.ResolutionSuggestion{
			Description: fmt.Sprintf("Move the session to room %s (capacity %d)", c.room.ID, c.room.Capacity),
			Actions: []models.ResolutionAction{{
				Kind:      models.ActionMove,
				SlotID:    target.ID,
				NewRoomID: c.room.ID,
			}},
			ImpactScore:        8 + float64(i),
			SuccessProbability: 0.85 - 0.05*float64(i),
		})
	}
	return out
}

// relaxSuggestions proposes relaxing the soft constraints behind a finding.
func (r *ScheduleResolver) relaxSuggestions(conflict models.EnhancedConflict) []models.ResolutionSuggestion {
	var relaxable []string
	impact := 0.0
	for _, id := range conflict.Constraints {
		c, ok := r.registry.Get(id)
		if !ok || !c.CanRelax {
			continue
		}
		relaxable = append(relaxable, id)
		impact += c.RelaxationPenalty
	}
	if len(relaxable) == 0 {
		return nil
	}
	return []models.ResolutionSuggestion{{
		Description: fmt.Sprintf("Accept the violation by relaxing %v", relaxable),
		Actions: []models.ResolutionAction{{
			Kind:        models.ActionRelax,
			Constraints: relaxable,
		}},
		ImpactScore:        impact,
		SuccessProbability: 0.95,
	}}
}

// placementClear reports whether a slot placement violates no hard
// constraint against the rest of the roster.
func (r *ScheduleResolver) placementClear(slot models.TimeSlot, roster []models.TimeSlot, refs models.ReferenceSet) bool {
	for _, other := range roster {
		if other.ID == slot.ID {
			continue
		}
		if !samePeriod(slot, other) || !slotsOverlap(slot, other) {
			continue
		}
		if slot.FacultyID != "" && slot.FacultyID == other.FacultyID && !exemptFromCheck(slot, other, models.CategoryFaculty) {
			return false
		}
		if slot.RoomID != "" && slot.RoomID == other.RoomID && !exemptFromCheck(slot, other, models.CategoryRoom) {
			return false
		}
		if slot.CourseID != "" && slot.CourseID == other.CourseID && slot.YearLevel == other.YearLevel &&
			!exemptFromCheck(slot, other, models.CategoryCourse) {
			return false
		}
		if slot.DepartmentID != "" && slot.DepartmentID == other.DepartmentID &&
			slot.YearLevel == other.YearLevel && slot.CourseID != other.CourseID &&
			other.GroupType != models.GroupSplit &&
			!exemptFromCheck(slot, other, models.CategoryStudent) {
			return false
		}
	}
	return true
}

// AutoResolve walks the ranked conflict list applying the first workable
// suggestion of each auto-resolvable conflict to a working copy of the
// roster. Relaxations share one budget across the whole run. The input
// roster is never mutated; a failed run leaves no partial state behind.
func (r *ScheduleResolver) AutoResolve(conflicts []models.EnhancedConflict, slots []models.TimeSlot, refs models.ReferenceSet, opts models.ResolveOptions) models.ResolutionResult {
	working := cloneSlots(slots)

	ordered := make([]models.EnhancedConflict, len(conflicts))
	copy(ordered, conflicts)
	sortConflicts(ordered)

	if opts.MaxRelaxation < 0 {
		opts.MaxRelaxation = 0
	}

	relaxed := make([]string, 0)
	relaxedSet := map[string]bool{}
	var remaining []models.EnhancedConflict
	resolvedCount := 0
	halted := false

	for idx, conflict := range ordered {
		if halted {
			remaining = append(remaining, ordered[idx])
			continue
		}
		if !conflict.AutoResolvable || len(conflict.Suggestions) == 0 {
			remaining = append(remaining, conflict)
			if !opts.AllowPartialResolution {
				halted = true
			}
			continue
		}

		applied := false
		for _, suggestion := range conflict.Suggestions {
			if opts.PreservePreferences && isRelaxOnly(suggestion) {
				continue
			}
			newRelax := relaxationsNeeded(suggestion, relaxedSet)
			if len(relaxedSet)+len(newRelax) > opts.MaxRelaxation {
				continue
			}
			next, err := applySuggestion(working, suggestion)
			if err != nil {
				r.logger.Warn("suggestion could not be applied",
					zap.String("conflict", conflict.ID),
					zap.Error(err),
				)
				continue
			}
			if !r.suggestionHolds(suggestion, next, refs) {
				continue
			}
			working = next
			for _, id := range newRelax {
				relaxedSet[id] = true
				relaxed = append(relaxed, id)
			}
			conflict.Resolved = true
			resolvedCount++
			applied = true
			break
		}

		if !applied {
			remaining = append(remaining, conflict)
			if !opts.AllowPartialResolution {
				halted = true
			}
		}
	}

	total := len(ordered)
	rate := 1.0
	if total > 0 {
		rate = float64(resolvedCount) / float64(total)
	}
	result := models.ResolutionResult{
		Success:            len(remaining) == 0,
		ResolvedSlots:      working,
		RemainingConflicts: remaining,
		RelaxedConstraints: relaxed,
		SuccessRate:        rate,
	}
	r.logger.Info("auto-resolution finished",
		zap.Int("resolved", resolvedCount),
		zap.Int("remaining", len(remaining)),
		zap.Float64("success_rate", rate),
	)
	return result
}

// suggestionHolds re-checks a structural suggestion against the roster it
// produced. Relax-only suggestions hold by definition.
func (r *ScheduleResolver) suggestionHolds(suggestion models.ResolutionSuggestion, roster []models.TimeSlot, refs models.ReferenceSet) bool {
	for _, action := range suggestion.Actions {
		switch action.Kind {
		case models.ActionMove, models.ActionSwap:
			if slot, ok := findSlot(roster, action.SlotID); ok {
				if !r.placementClear(slot, roster, refs) {
					return false
				}
			}
			if action.SwapSlotID != "" {
				if slot, ok := findSlot(roster, action.SwapSlotID); ok {
					if !r.placementClear(slot, roster, refs) {
						return false
					}
				}
			}
		}
	}
	return true
}

func isRelaxOnly(s models.ResolutionSuggestion) bool {
	if len(s.Actions) == 0 {
		return false
	}
	for _, a := range s.Actions {
		if a.Kind != models.ActionRelax {
			return false
		}
	}
	return true
}

func relaxationsNeeded(s models.ResolutionSuggestion, already map[string]bool) []string {
	var out []string
	for _, a := range s.Actions {
		if a.Kind != models.ActionRelax {
			continue
		}
		for _, id := range a.Constraints {
			if !already[id] {
				out = append(out, id)
			}
		}
	}
	return out
}

// applySuggestion plays a suggestion's actions onto a copy of the roster.
// Any failure, including a panic from a malformed action, returns an error
// and leaves the input untouched.
func applySuggestion(roster []models.TimeSlot, suggestion models.ResolutionSuggestion) (out []models.TimeSlot, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = errors.Wrap(fmt.Errorf("%v", rec), errors.ErrInternal.Code, errors.ErrInternal.Status, "suggestion application panicked")
		}
	}()

	work := cloneSlots(roster)
	for _, action := range suggestion.Actions {
		switch action.Kind {
		case models.ActionMove:
			idx := indexOfSlot(work, action.SlotID)
			if idx < 0 {
				return nil, errors.Clone(errors.ErrNotFound, fmt.Sprintf("slot %s not found", action.SlotID))
			}
			if action.NewDayOfWeek > 0 {
				work[idx].DayOfWeek = action.NewDayOfWeek
			}
			if action.NewStartTime != "" {
				work[idx].StartTime = action.NewStartTime
			}
			if action.NewEndTime != "" {
				work[idx].EndTime = action.NewEndTime
			}
			if action.NewRoomID != "" {
				work[idx].RoomID = action.NewRoomID
			}
			if action.NewFacultyID != "" {
				work[idx].FacultyID = action.NewFacultyID
			}
		case models.ActionSwap:
			i := indexOfSlot(work, action.SlotID)
			j := indexOfSlot(work, action.SwapSlotID)
			if i < 0 || j < 0 {
				return nil, errors.Clone(errors.ErrNotFound, "swap partner not found")
			}
			work[i].DayOfWeek, work[j].DayOfWeek = work[j].DayOfWeek, work[i].DayOfWeek
			work[i].StartTime, work[j].StartTime = work[j].StartTime, work[i].StartTime
			work[i].EndTime, work[j].EndTime = work[j].EndTime, work[i].EndTime
		case models.ActionRelax:
			// No structural change; the budget is accounted by the caller.
		case models.ActionCancel:
			idx := indexOfSlot(work, action.SlotID)
			if idx < 0 {
				return nil, errors.Clone(errors.ErrNotFound, fmt.Sprintf("slot %s not found", action.SlotID))
			}
			work = append(work[:idx], work[idx+1:]...)
		default:
			return nil, errors.Clone(errors.ErrUnresolvable, fmt.Sprintf("action %s is not applicable automatically", action.Kind))
		}
	}
	return work, nil
}

func findSlot(roster []models.TimeSlot, id string) (models.TimeSlot, bool) {
	idx := indexOfSlot(roster, id)
	if idx < 0 {
		return models.TimeSlot{}, false
	}
	return roster[idx], true
}

func indexOfSlot(roster []models.TimeSlot, id string) int {
	if id == "" {
		return -1
	}
	for i := range roster {
		if roster[i].ID == id {
			return i
		}
	}
	return -1
}

func replaceSlot(roster []models.TimeSlot, slot models.TimeSlot) {
	if idx := indexOfSlot(roster, slot.ID); idx >= 0 {
		roster[idx] = slot
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
