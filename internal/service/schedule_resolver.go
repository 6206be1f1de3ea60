package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
)

// ScheduleResolver audits a whole roster for conflicts, enriches each
// finding with ranked resolution suggestions, and can apply the best
// suggestions automatically within a relaxation budget.
type ScheduleResolver struct {
	registry *ConstraintRegistry
	cfg      config.EngineConfig
	logger   *zap.Logger
}

// NewScheduleResolver builds a resolver around a constraint registry.
func NewScheduleResolver(registry *ConstraintRegistry, cfg config.EngineConfig, logger *zap.Logger) *ScheduleResolver {
	if registry == nil {
		registry = NewConstraintRegistry(nil)
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 5
	}
	if cfg.DefaultMaxRelaxation < 0 {
		cfg.DefaultMaxRelaxation = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleResolver{registry: registry, cfg: cfg, logger: logger}
}

// Conflict scores used to rank findings within a severity band.
const (
	scoreRoomOverlap       = 1000
	scoreFacultyOverlap    = 1000
	scoreStudentOverlap    = 900
	scoreCourseDuplicate   = 800
	scoreRoomTypeHard      = 300
	scoreRoomTypeSoft      = 150
	scoreRoomCapacity      = 250
	scoreScheduleTightness = 100
)

// DetectConflicts runs every audit check over the roster and returns the
// findings ordered by severity, then score, then discovery order. The input
// roster is never mutated.
func (r *ScheduleResolver) DetectConflicts(slots []models.TimeSlot, refs models.ReferenceSet) []models.EnhancedConflict {
	var conflicts []models.EnhancedConflict

	conflicts = append(conflicts, r.detectRoomOverlaps(slots)...)
	conflicts = append(conflicts, r.detectFacultyOverlaps(slots)...)
	conflicts = append(conflicts, r.detectCourseDuplicates(slots)...)
	conflicts = append(conflicts, r.detectRoomTypeMismatches(slots, refs)...)
	conflicts = append(conflicts, r.detectCapacityProblems(slots, refs)...)
	conflicts = append(conflicts, r.detectTightSchedules(slots, refs)...)
	conflicts = append(conflicts, r.detectStudentOverlaps(slots, refs)...)

	for i := range conflicts {
		conflicts[i].Suggestions = r.generateSuggestions(conflicts[i], slots, refs)
	}

	sortConflicts(conflicts)

	r.logger.Info("schedule audited",
		zap.Int("slots", len(slots)),
		zap.Int("conflicts", len(conflicts)),
	)
	return conflicts
}

func severityRank(s models.AuditSeverity) int {
	switch s {
	case models.AuditHigh:
		return 3
	case models.AuditMedium:
		return 2
	case models.AuditLow:
		return 1
	default:
		return 0
	}
}

func sortConflicts(conflicts []models.EnhancedConflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		ri, rj := severityRank(conflicts[i].Severity), severityRank(conflicts[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return conflicts[i].Score > conflicts[j].Score
	})
}

// conflictID derives a stable identifier from the finding itself, so two
// audits of the same roster name the same conflicts.
func conflictID(t models.ConflictType, affected []string) string {
	name := string(t) + "|" + strings.Join(affected, "|")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func newConflict(t models.ConflictType, severity models.AuditSeverity, score float64, description string, affected ...string) models.EnhancedConflict {
	return models.EnhancedConflict{
		ID:            conflictID(t, affected),
		Type:          t,
		Severity:      severity,
		Score:         score,
		Description:   description,
		AffectedSlots: affected,
	}
}

func (r *ScheduleResolver) detectRoomOverlaps(slots []models.TimeSlot) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.RoomID == "" || a.RoomID != b.RoomID {
				continue
			}
			if !samePeriod(a, b) || !slotsOverlap(a, b) {
				continue
			}
			if exemptFromCheck(a, b, models.CategoryRoom) {
				continue
			}
			c := newConflict(models.ConflictRoomOverlap, models.AuditHigh, scoreRoomOverlap,
				fmt.Sprintf("room %s is double-booked on day %d between %s and %s", a.RoomID, a.DayOfWeek, laterStart(a, b), earlierEnd(a, b)),
				a.ID, b.ID)
			c.Constraints = []string{ConstraintRoomOverlap}
			out = append(out, c)
		}
	}
	return out
}

func (r *ScheduleResolver) detectFacultyOverlaps(slots []models.TimeSlot) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.FacultyID == "" || a.FacultyID != b.FacultyID {
				continue
			}
			if !samePeriod(a, b) || !slotsOverlap(a, b) {
				continue
			}
			if exemptFromCheck(a, b, models.CategoryFaculty) {
				continue
			}
			c := newConflict(models.ConflictFacultyOverlap, models.AuditHigh, scoreFacultyOverlap,
				fmt.Sprintf("faculty %s is double-booked on day %d between %s and %s", a.FacultyID, a.DayOfWeek, laterStart(a, b), earlierEnd(a, b)),
				a.ID, b.ID)
			c.Constraints = []string{ConstraintFacultyOverlap}
			out = append(out, c)
		}
	}
	return out
}

func (r *ScheduleResolver) detectCourseDuplicates(slots []models.TimeSlot) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.CourseID == "" || a.CourseID != b.CourseID || a.YearLevel != b.YearLevel {
				continue
			}
			if !samePeriod(a, b) || !slotsOverlap(a, b) {
				continue
			}
			if exemptFromCheck(a, b, models.CategoryCourse) {
				continue
			}
			c := newConflict(models.ConflictCourseDuplicate, models.AuditHigh, scoreCourseDuplicate,
				fmt.Sprintf("course %s meets twice at overlapping times on day %d", a.CourseID, a.DayOfWeek),
				a.ID, b.ID)
			c.AutoResolvable = true
			out = append(out, c)
		}
	}
	return out
}

func (r *ScheduleResolver) detectRoomTypeMismatches(slots []models.TimeSlot, refs models.ReferenceSet) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for _, slot := range slots {
		room, okRoom := refs.Rooms[slot.RoomID]
		course, okCourse := refs.Courses[slot.CourseID]
		if !okRoom || !okCourse {
			continue
		}
		if course.RequiresLab && !room.IsLab {
			c := newConflict(models.ConflictRoomTypeMismatch, models.AuditMedium, scoreRoomTypeHard,
				fmt.Sprintf("course %s requires a lab but is scheduled in %s", course.ID, room.ID),
				slot.ID)
			c.Constraints = []string{ConstraintRoomTypeMatch}
			c.AutoResolvable = true
			out = append(out, c)
		} else if !course.RequiresLab && room.IsLab {
			c := newConflict(models.ConflictRoomTypeMismatch, models.AuditLow, scoreRoomTypeSoft,
				fmt.Sprintf("lab room %s is occupied by non-lab course %s", room.ID, course.ID),
				slot.ID)
			c.Constraints = []string{ConstraintRoomTypeMatch}
			c.AutoResolvable = true
			out = append(out, c)
		}
	}
	return out
}

func (r *ScheduleResolver) detectCapacityProblems(slots []models.TimeSlot, refs models.ReferenceSet) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for _, slot := range slots {
		room, ok := refs.Rooms[slot.RoomID]
		if !ok || room.Capacity <= 0 {
			continue
		}
		course, okCourse := refs.Courses[slot.CourseID]
		switch {
		case okCourse && course.StudentCount > 0 && room.Capacity < course.StudentCount:
			c := newConflict(models.ConflictRoomCapacity, models.AuditMedium, scoreRoomCapacity,
				fmt.Sprintf("room %s holds %d but course %s enrolls %d", room.ID, room.Capacity, course.ID, course.StudentCount),
				slot.ID)
			c.Constraints = []string{ConstraintRoomCapacity}
			c.AutoResolvable = true
			out = append(out, c)
		case slot.LessonKind == models.LessonLecture && room.Capacity < minLectureRoomCapacity:
			c := newConflict(models.ConflictRoomCapacity, models.AuditMedium, scoreRoomCapacity,
				fmt.Sprintf("lecture in room %s with capacity %d", room.ID, room.Capacity),
				slot.ID)
			c.Constraints = []string{ConstraintRoomCapacity}
			c.AutoResolvable = true
			out = append(out, c)
		}
	}
	return out
}

// detectTightSchedules flags back-to-back sessions of one faculty member in
// different buildings with less travel time than the minimum gap.
func (r *ScheduleResolver) detectTightSchedules(slots []models.TimeSlot, refs models.ReferenceSet) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.FacultyID == "" || a.FacultyID != b.FacultyID || a.DayOfWeek != b.DayOfWeek {
				continue
			}
			if !samePeriod(a, b) {
				continue
			}
			roomA, okA := refs.Rooms[a.RoomID]
			roomB, okB := refs.Rooms[b.RoomID]
			if !okA || !okB || roomA.Building == "" || roomA.Building == roomB.Building {
				continue
			}
			aStart, aEnd, ok := slotWindow(a)
			if !ok {
				continue
			}
			bStart, bEnd, ok := slotWindow(b)
			if !ok {
				continue
			}
			gap := -1
			switch {
			case bStart >= aEnd:
				gap = bStart - aEnd
			case aStart >= bEnd:
				gap = aStart - bEnd
			}
			if gap < 0 || gap >= minTravelGapMinutes {
				continue
			}
			c := newConflict(models.ConflictTightSchedule, models.AuditLow, scoreScheduleTightness,
				fmt.Sprintf("faculty %s has %d minutes to move from %s to %s", a.FacultyID, gap, roomA.Building, roomB.Building),
				a.ID, b.ID)
			c.Constraints = []string{ConstraintBuildingTravel}
			c.AutoResolvable = true
			out = append(out, c)
		}
	}
	return out
}

// detectStudentOverlaps checks enrollment data: two slots collide when at
// least one student is enrolled in both courses and the windows overlap.
func (r *ScheduleResolver) detectStudentOverlaps(slots []models.TimeSlot, refs models.ReferenceSet) []models.EnhancedConflict {
	if len(refs.Students) == 0 {
		return nil
	}

	enrolledIn := func(s models.Student, courseID string) bool {
		for _, c := range s.EnrolledCourses {
			if c == courseID {
				return true
			}
		}
		return false
	}

	type pairKey struct{ a, b string }
	counted := map[pairKey]int{}
	var order []pairKey
	pairSlots := map[pairKey][2]models.TimeSlot{}

	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.CourseID == "" || b.CourseID == "" || a.CourseID == b.CourseID {
				continue
			}
			if !samePeriod(a, b) || !slotsOverlap(a, b) {
				continue
			}
			if exemptFromCheck(a, b, models.CategoryStudent) {
				continue
			}
			affected := 0
			for _, student := range refs.Students {
				if enrolledIn(student, a.CourseID) && enrolledIn(student, b.CourseID) {
					affected++
				}
			}
			if affected == 0 {
				continue
			}
			key := pairKey{a.ID, b.ID}
			if _, seen := counted[key]; !seen {
				order = append(order, key)
				pairSlots[key] = [2]models.TimeSlot{a, b}
			}
			counted[key] += affected
		}
	}

	var out []models.EnhancedConflict
	for _, key := range order {
		pair := pairSlots[key]
		c := newConflict(models.ConflictStudentOverlap, models.AuditHigh, scoreStudentOverlap,
			fmt.Sprintf("%d students are enrolled in both %s and %s which meet at overlapping times", counted[key], pair[0].CourseID, pair[1].CourseID),
			key.a, key.b)
		c.Constraints = []string{ConstraintStudentOverlap}
		c.Details = []string{fmt.Sprintf("affected students: %d", counted[key])}
		c.AutoResolvable = true
		out = append(out, c)
	}
	return out
}

func laterStart(a, b models.TimeSlot) string {
	aStart, _, okA := slotWindow(a)
	bStart, _, okB := slotWindow(b)
	if !okA || !okB {
		return a.StartTime
	}
	if aStart > bStart {
		return a.StartTime
	}
	return b.StartTime
}

func earlierEnd(a, b models.TimeSlot) string {
	_, aEnd, okA := slotWindow(a)
	_, bEnd, okB := slotWindow(b)
	if !okA || !okB {
		return a.EndTime
	}
	if aEnd < bEnd {
		return a.EndTime
	}
	return b.EndTime
}
