package service

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/errors"
)

// Identifiers of the built-in scheduling rules.
const (
	ConstraintRoomOverlap    = "room-overlap"
	ConstraintFacultyOverlap = "faculty-overlap"
	ConstraintStudentOverlap = "student-overlap"
	ConstraintRoomTypeMatch  = "room-type-match"
	ConstraintRoomCapacity   = "room-capacity"
	ConstraintBuildingTravel = "building-travel"
	ConstraintFacultyLoad    = "faculty-workload"
)

const (
	defaultMaxDailyLoad    = 6
	minTravelGapMinutes    = 15
	minLectureRoomCapacity = 30
)

// EvaluationContext carries everything a constraint needs to judge one slot
// against the rest of the roster.
type EvaluationContext struct {
	Slot     models.TimeSlot
	AllSlots []models.TimeSlot
	Refs     models.ReferenceSet
}

// EvaluatorFunc judges one constraint for a context.
type EvaluatorFunc func(ctx EvaluationContext) models.ConstraintEvaluation

// ConstraintRegistry holds the active scheduling rules. Built-in rules are
// seeded at construction; callers may register additional rules at runtime,
// typically prefixed dynamic- or pref-, and clear them per planning run.
type ConstraintRegistry struct {
	mu         sync.RWMutex
	items      map[string]models.Constraint
	evaluators map[string]EvaluatorFunc
	order      []string
	logger     *zap.Logger
}

// NewConstraintRegistry builds a registry seeded with the built-in rules.
func NewConstraintRegistry(logger *zap.Logger) *ConstraintRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ConstraintRegistry{
		items:      make(map[string]models.Constraint),
		evaluators: make(map[string]EvaluatorFunc),
		logger:     logger,
	}
	r.seed()
	return r
}

func (r *ConstraintRegistry) seed() {
	seeds := []struct {
		constraint models.Constraint
		evaluator  EvaluatorFunc
	}{
		{
			models.Constraint{ID: ConstraintRoomOverlap, Name: "No room double-booking", Type: models.ConstraintHard, Category: models.CategoryRoom, Importance: 1000},
			evaluateRoomOverlap,
		},
		{
			models.Constraint{ID: ConstraintFacultyOverlap, Name: "No faculty double-booking", Type: models.ConstraintHard, Category: models.CategoryFaculty, Importance: 1000},
			evaluateFacultyOverlap,
		},
		{
			models.Constraint{ID: ConstraintStudentOverlap, Name: "No cohort double-booking", Type: models.ConstraintHard, Category: models.CategoryStudent, Importance: 1000},
			evaluateStudentOverlap,
		},
		{
			models.Constraint{ID: ConstraintRoomCapacity, Name: "Room capacity fits the class", Type: models.ConstraintSoft, Category: models.CategoryResource, Importance: 500, CanRelax: true, RelaxationPenalty: 80},
			evaluateRoomCapacity,
		},
		{
			models.Constraint{ID: ConstraintRoomTypeMatch, Name: "Room type matches the lesson", Type: models.ConstraintSoft, Category: models.CategoryResource, Importance: 400, CanRelax: true, RelaxationPenalty: 50},
			evaluateRoomTypeMatch,
		},
		{
			models.Constraint{ID: ConstraintFacultyLoad, Name: "Faculty daily load within limit", Type: models.ConstraintSoft, Category: models.CategoryFaculty, Importance: 300, CanRelax: true, RelaxationPenalty: 40},
			evaluateFacultyLoad,
		},
		{
			models.Constraint{ID: ConstraintBuildingTravel, Name: "Travel time between buildings", Type: models.ConstraintSoft, Category: models.CategoryPreference, Importance: 200, CanRelax: true, RelaxationPenalty: 30},
			evaluateBuildingTravel,
		},
	}
	for _, s := range seeds {
		r.items[s.constraint.ID] = s.constraint
		r.evaluators[s.constraint.ID] = s.evaluator
		r.order = append(r.order, s.constraint.ID)
	}
}

// Add registers a constraint. Hard constraints must not be marked relaxable.
func (r *ConstraintRegistry) Add(c models.Constraint) error {
	if c.ID == "" {
		return errors.Clone(errors.ErrValidation, "constraint id is required")
	}
	if c.Type == models.ConstraintHard && c.CanRelax {
		return errors.Clone(errors.ErrValidation, fmt.Sprintf("hard constraint %s cannot be relaxable", c.ID))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.items[c.ID] = c
	r.logger.Debug("constraint registered", zap.String("id", c.ID), zap.String("type", string(c.Type)))
	return nil
}

// AddEvaluator attaches an evaluation function to a registered constraint.
func (r *ConstraintRegistry) AddEvaluator(id string, fn EvaluatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[id] = fn
}

// Remove unregisters a constraint and reports whether it existed.
func (r *ConstraintRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	delete(r.evaluators, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a constraint by id.
func (r *ConstraintRegistry) Get(id string) (models.Constraint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	return c, ok
}

// List returns all constraints in registration order.
func (r *ConstraintRegistry) List() []models.Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Constraint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// ClearDynamic drops every constraint whose id marks it as run-scoped and
// returns how many were removed. Built-in rules are never touched.
func (r *ConstraintRegistry) ClearDynamic() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if strings.HasPrefix(id, "dynamic-") || strings.HasPrefix(id, "pref-") {
			delete(r.items, id)
			delete(r.evaluators, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	if removed > 0 {
		r.logger.Debug("dynamic constraints cleared", zap.Int("removed", removed))
	}
	return removed
}

// Evaluate judges one constraint for a context. Constraints registered
// without an evaluator are treated as satisfied.
func (r *ConstraintRegistry) Evaluate(id string, ctx EvaluationContext) (models.ConstraintEvaluation, error) {
	r.mu.RLock()
	_, ok := r.items[id]
	fn := r.evaluators[id]
	r.mu.RUnlock()
	if !ok {
		return models.ConstraintEvaluation{}, errors.Clone(errors.ErrNotFound, fmt.Sprintf("constraint %s is not registered", id))
	}
	if fn == nil {
		return models.ConstraintEvaluation{Satisfied: true}, nil
	}
	return fn(ctx), nil
}

// TotalViolation sums the penalties of every unsatisfied constraint for a
// context. Used to compare candidate placements during resolution.
func (r *ConstraintRegistry) TotalViolation(ctx EvaluationContext) float64 {
	total := 0.0
	for _, c := range r.List() {
		eval, err := r.Evaluate(c.ID, ctx)
		if err != nil {
			continue
		}
		if !eval.Satisfied {
			total += eval.Penalty
		}
	}
	return total
}

func evaluateRoomOverlap(ctx EvaluationContext) models.ConstraintEvaluation {
	eval := models.ConstraintEvaluation{Satisfied: true}
	for _, other := range ctx.AllSlots {
		if other.ID == ctx.Slot.ID || other.RoomID == "" || other.RoomID != ctx.Slot.RoomID {
			continue
		}
		if !samePeriod(ctx.Slot, other) || !slotsOverlap(ctx.Slot, other) {
			continue
		}
		if exemptFromCheck(ctx.Slot, other, models.CategoryRoom) {
			continue
		}
		eval.Satisfied = false
		eval.Penalty += 1000
		eval.Details = append(eval.Details, fmt.Sprintf("room %s already booked by slot %s", ctx.Slot.RoomID, other.ID))
	}
	return eval
}

func evaluateFacultyOverlap(ctx EvaluationContext) models.ConstraintEvaluation {
	eval := models.ConstraintEvaluation{Satisfied: true}
	for _, other := range ctx.AllSlots {
		if other.ID == ctx.Slot.ID || other.FacultyID == "" || other.FacultyID != ctx.Slot.FacultyID {
			continue
		}
		if !samePeriod(ctx.Slot, other) || !slotsOverlap(ctx.Slot, other) {
			continue
		}
		if exemptFromCheck(ctx.Slot, other, models.CategoryFaculty) {
			continue
		}
		eval.Satisfied = false
		eval.Penalty += 1000
		eval.Details = append(eval.Details, fmt.Sprintf("faculty %s already teaching slot %s", ctx.Slot.FacultyID, other.ID))
	}
	return eval
}

func evaluateStudentOverlap(ctx EvaluationContext) models.ConstraintEvaluation {
	eval := models.ConstraintEvaluation{Satisfied: true}
	for _, other := range ctx.AllSlots {
		if other.ID == ctx.Slot.ID || other.CourseID == ctx.Slot.CourseID {
			continue
		}
		if other.DepartmentID != ctx.Slot.DepartmentID || other.YearLevel != ctx.Slot.YearLevel {
			continue
		}
		if !samePeriod(ctx.Slot, other) || !slotsOverlap(ctx.Slot, other) {
			continue
		}
		if exemptFromCheck(ctx.Slot, other, models.CategoryStudent) {
			continue
		}
		eval.Satisfied = false
		eval.Penalty += 1000
		eval.Details = append(eval.Details, fmt.Sprintf("cohort year %d already attending slot %s", ctx.Slot.YearLevel, other.ID))
	}
	return eval
}

func evaluateRoomCapacity(ctx EvaluationContext) models.ConstraintEvaluation {
	room, ok := ctx.Refs.Rooms[ctx.Slot.RoomID]
	if !ok {
		return models.ConstraintEvaluation{Satisfied: true}
	}
	course, hasCourse := ctx.Refs.Courses[ctx.Slot.CourseID]
	if hasCourse && course.StudentCount > 0 {
		if room.Capacity < course.StudentCount {
			return models.ConstraintEvaluation{
				Satisfied: false,
				Penalty:   80,
				Details:   []string{fmt.Sprintf("room %s holds %d, course enrolls %d", room.ID, room.Capacity, course.StudentCount)},
			}
		}
		return models.ConstraintEvaluation{Satisfied: true}
	}
	if ctx.Slot.LessonKind == models.LessonLecture && room.Capacity > 0 && room.Capacity < minLectureRoomCapacity {
		return models.ConstraintEvaluation{
			Satisfied: false,
			Penalty:   80,
			Details:   []string{fmt.Sprintf("room %s capacity %d is small for a lecture", room.ID, room.Capacity)},
		}
	}
	return models.ConstraintEvaluation{Satisfied: true}
}

func evaluateRoomTypeMatch(ctx EvaluationContext) models.ConstraintEvaluation {
	room, okRoom := ctx.Refs.Rooms[ctx.Slot.RoomID]
	course, okCourse := ctx.Refs.Courses[ctx.Slot.CourseID]
	if !okRoom || !okCourse {
		return models.ConstraintEvaluation{Satisfied: true}
	}
	if course.RequiresLab && !room.IsLab {
		return models.ConstraintEvaluation{
			Satisfied: false,
			Penalty:   50,
			Details:   []string{fmt.Sprintf("course %s requires a lab, room %s is not one", course.ID, room.ID)},
		}
	}
	if !course.RequiresLab && room.IsLab {
		return models.ConstraintEvaluation{
			Satisfied: false,
			Penalty:   25,
			Details:   []string{fmt.Sprintf("lab room %s occupied by non-lab course %s", room.ID, course.ID)},
		}
	}
	return models.ConstraintEvaluation{Satisfied: true}
}

func evaluateFacultyLoad(ctx EvaluationContext) models.ConstraintEvaluation {
	if ctx.Slot.FacultyID == "" {
		return models.ConstraintEvaluation{Satisfied: true}
	}
	limit := defaultMaxDailyLoad
	if f, ok := ctx.Refs.Faculty[ctx.Slot.FacultyID]; ok && f.MaxDailyLoad > 0 {
		limit = f.MaxDailyLoad
	}
	count := 0
	seenGroups := map[string]bool{}
	for _, other := range ctx.AllSlots {
		if other.FacultyID != ctx.Slot.FacultyID || other.DayOfWeek != ctx.Slot.DayOfWeek {
			continue
		}
		if !samePeriod(ctx.Slot, other) {
			continue
		}
		// A joint session counts once however many courses share it.
		if other.GroupType == models.GroupJoint && other.GroupID != "" {
			if seenGroups[other.GroupID] {
				continue
			}
			seenGroups[other.GroupID] = true
		}
		count++
	}
	if count > limit {
		return models.ConstraintEvaluation{
			Satisfied: false,
			Penalty:   float64(40 * (count - limit)),
			Details:   []string{fmt.Sprintf("faculty %s has %d sessions on day %d, limit %d", ctx.Slot.FacultyID, count, ctx.Slot.DayOfWeek, limit)},
		}
	}
	return models.ConstraintEvaluation{Satisfied: true}
}

func evaluateBuildingTravel(ctx EvaluationContext) models.ConstraintEvaluation {
	room, ok := ctx.Refs.Rooms[ctx.Slot.RoomID]
	if !ok || room.Building == "" {
		return models.ConstraintEvaluation{Satisfied: true}
	}
	start, end, okWindow := slotWindow(ctx.Slot)
	if !okWindow {
		return models.ConstraintEvaluation{Satisfied: true}
	}
	eval := models.ConstraintEvaluation{Satisfied: true}
	for _, other := range ctx.AllSlots {
		if other.ID == ctx.Slot.ID || other.FacultyID != ctx.Slot.FacultyID || other.DayOfWeek != ctx.Slot.DayOfWeek {
			continue
		}
		if !samePeriod(ctx.Slot, other) {
			continue
		}
		otherRoom, okOther := ctx.Refs.Rooms[other.RoomID]
		if !okOther || otherRoom.Building == "" || otherRoom.Building == room.Building {
			continue
		}
		oStart, oEnd, okO := slotWindow(other)
		if !okO {
			continue
		}
		gap := -1
		if oStart >= end {
			gap = oStart - end
		} else if start >= oEnd {
			gap = start - oEnd
		}
		if gap >= 0 && gap < minTravelGapMinutes {
			eval.Satisfied = false
			eval.Penalty += 30
			eval.Details = append(eval.Details, fmt.Sprintf("only %d minutes to move between %s and %s", gap, room.Building, otherRoom.Building))
		}
	}
	return eval
}
