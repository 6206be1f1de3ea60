package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
)

func defaultEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		MaxSuggestions:       5,
		DefaultMaxRelaxation: 3,
		MinDurationMinutes:   30,
		MaxDurationMinutes:   240,
	}
}

// CandidateValidator answers "can this slot be scheduled here?" for a
// proposed placement. Findings are returned as data; the validator only
// fails when it cannot understand the candidate at all.
type CandidateValidator struct {
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewCandidateValidator builds a validator with sane fallbacks for zero config.
func NewCandidateValidator(cfg config.EngineConfig, logger *zap.Logger) *CandidateValidator {
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 5
	}
	if cfg.MinDurationMinutes <= 0 {
		cfg.MinDurationMinutes = 30
	}
	if cfg.MaxDurationMinutes <= 0 {
		cfg.MaxDurationMinutes = 240
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateValidator{cfg: cfg, logger: logger}
}

// Detect validates one candidate against the existing roster. Basic shape
// problems short-circuit the scan: a candidate whose times cannot be parsed
// is never compared against other slots.
func (v *CandidateValidator) Detect(candidate dto.Candidate, existing []models.TimeSlot, refs models.ReferenceSet) models.ConflictResult {
	base := candidate.Base()

	conflicts := v.validateBasics(candidate)
	if hasError(conflicts) {
		return buildResult(conflicts, nil)
	}

	roster := narrowScope(existing, base)

	var blockers []models.TimeSlot
	switch c := candidate.(type) {
	case dto.AddCandidate:
		found, slots := v.checkAdd(c, roster)
		conflicts = append(conflicts, found...)
		blockers = slots
	case dto.JointCandidate:
		found, slots := v.checkJoint(c, roster, refs)
		conflicts = append(conflicts, found...)
		blockers = slots
	case dto.SplitCandidate:
		found, slots := v.checkSplit(c, roster)
		conflicts = append(conflicts, found...)
		blockers = slots
	}

	conflicts = append(conflicts, v.checkDuration(base)...)

	suggestions := v.buildSuggestions(candidate, conflicts, blockers)
	v.logger.Debug("candidate validated",
		zap.String("mode", string(candidate.Mode())),
		zap.Int("conflicts", len(conflicts)),
	)
	return buildResult(conflicts, suggestions)
}

func buildResult(conflicts []models.Conflict, suggestions []string) models.ConflictResult {
	return models.ConflictResult{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
		CanProceed:   !hasError(conflicts),
		Suggestions:  suggestions,
	}
}

func hasError(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == models.SeverityError {
			return true
		}
	}
	return false
}

// validateBasics covers field presence, clock formats, ordering and the
// structural minimums of each mode.
func (v *CandidateValidator) validateBasics(candidate dto.Candidate) []models.Conflict {
	base := candidate.Base()
	var out []models.Conflict

	missing := func(field string) {
		out = append(out, models.Conflict{
			Type:     models.ConflictMissingField,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("%s is required", field),
		})
	}

	if base.DayOfWeek < 1 || base.DayOfWeek > 7 {
		out = append(out, models.Conflict{
			Type:     models.ConflictMissingField,
			Severity: models.SeverityError,
			Message:  "day_of_week must be between 1 and 7",
		})
	}
	if base.AcademicYear == "" {
		missing("academic_year")
	}
	if base.Semester == "" {
		missing("semester")
	}
	if base.YearLevel < 1 {
		missing("year_level")
	}

	out = append(out, checkWindow(base.StartTime, base.EndTime, "")...)

	switch c := candidate.(type) {
	case dto.AddCandidate:
		if c.CourseID == "" {
			missing("course_id")
		}
		if c.FacultyID == "" {
			missing("faculty_id")
		}
		if c.RoomID == "" {
			missing("room_id")
		}
	case dto.JointCandidate:
		if c.FacultyID == "" {
			missing("faculty_id")
		}
		if c.RoomID == "" {
			missing("room_id")
		}
		if len(uniqueStrings(c.CourseIDs)) < 2 {
			out = append(out, models.Conflict{
				Type:     models.ConflictJointComposition,
				Severity: models.SeverityError,
				Message:  "joint sessions require at least 2 distinct courses",
			})
		}
	case dto.SplitCandidate:
		if c.CourseID == "" {
			missing("course_id")
		}
		if len(c.Groups) < 2 {
			out = append(out, models.Conflict{
				Type:     models.ConflictSplitComposition,
				Severity: models.SeverityError,
				Message:  "split classes require at least 2 sub-groups",
			})
		}
	}

	return out
}

// checkWindow validates one clock window. label prefixes messages when the
// window belongs to a sub-group rather than the candidate itself.
func checkWindow(start, end, label string) []models.Conflict {
	prefix := ""
	if label != "" {
		prefix = label + ": "
	}
	var out []models.Conflict
	okStart := validClock(start)
	okEnd := validClock(end)
	if !okStart {
		out = append(out, models.Conflict{
			Type:     models.ConflictTimeFormat,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("%sstart_time %q is not a valid HH:MM time", prefix, start),
		})
	}
	if !okEnd {
		out = append(out, models.Conflict{
			Type:     models.ConflictTimeFormat,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("%send_time %q is not a valid HH:MM time", prefix, end),
		})
	}
	if okStart && okEnd {
		s, _ := parseClock(start)
		e, _ := parseClock(end)
		if s >= e {
			out = append(out, models.Conflict{
				Type:     models.ConflictTimeOrder,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("%send_time %s must be after start_time %s", prefix, end, start),
			})
		}
	}
	return out
}

// narrowScope keeps only slots that could possibly collide with the
// candidate: same period and day, minus the slot being edited.
func narrowScope(existing []models.TimeSlot, base dto.CandidateBase) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(existing))
	for _, slot := range existing {
		if slot.ID != "" && slot.ID == base.ExcludeSlotID {
			continue
		}
		if slot.AcademicYear != base.AcademicYear || slot.Semester != base.Semester {
			continue
		}
		if slot.DayOfWeek != base.DayOfWeek {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// candidateSlot projects the candidate onto the slot shape so the shared
// exemption predicate and overlap helpers apply to it unchanged.
func candidateSlot(base dto.CandidateBase, courseID, facultyID, roomID string, groupType models.GroupType) models.TimeSlot {
	if groupType == "" {
		groupType = models.GroupRegular
	}
	return models.TimeSlot{
		DepartmentID: base.DepartmentID,
		CourseID:     courseID,
		FacultyID:    facultyID,
		RoomID:       roomID,
		YearLevel:    base.YearLevel,
		DayOfWeek:    base.DayOfWeek,
		StartTime:    base.StartTime,
		EndTime:      base.EndTime,
		AcademicYear: base.AcademicYear,
		Semester:     base.Semester,
		LessonKind:   base.LessonKind,
		GroupType:    groupType,
		GroupID:      base.GroupID,
	}
}

// describeOccupant names what is holding the clashing booking, so joint and
// split occupants read differently from ordinary classes.
func describeOccupant(slot models.TimeSlot) string {
	switch slot.GroupType {
	case models.GroupJoint:
		return "a joint session"
	case models.GroupSplit:
		return "a split-class sub-group"
	default:
		return "another class"
	}
}

// checkPair runs the resource checks shared by all modes for one
// candidate/roster pair. It returns findings plus whether the pair collides
// in time at all.
func checkPair(cand, slot models.TimeSlot) ([]models.Conflict, bool) {
	var out []models.Conflict

	if cand.SameMeeting(slot) && !exemptFromCheck(cand, slot, models.CategoryCourse) {
		out = append(out, models.Conflict{
			Type:              models.ConflictDuplicateSlot,
			Severity:          models.SeverityError,
			Message:           "an identical slot already exists",
			ConflictingSlotID: slot.ID,
		})
		return out, true
	}

	if !slotsOverlap(cand, slot) {
		return out, false
	}

	if cand.FacultyID != "" && cand.FacultyID == slot.FacultyID && !exemptFromCheck(cand, slot, models.CategoryFaculty) {
		out = append(out, models.Conflict{
			Type:              models.ConflictFacultyOverlap,
			Severity:          models.SeverityError,
			Message:           fmt.Sprintf("faculty is already teaching %s from %s to %s", describeOccupant(slot), slot.StartTime, slot.EndTime),
			ConflictingSlotID: slot.ID,
		})
	}

	if cand.RoomID != "" && cand.RoomID == slot.RoomID && !exemptFromCheck(cand, slot, models.CategoryRoom) {
		out = append(out, models.Conflict{
			Type:              models.ConflictRoomOverlap,
			Severity:          models.SeverityError,
			Message:           fmt.Sprintf("room is occupied by %s from %s to %s", describeOccupant(slot), slot.StartTime, slot.EndTime),
			ConflictingSlotID: slot.ID,
		})
	}

	if cand.CourseID != "" && cand.CourseID == slot.CourseID && cand.YearLevel == slot.YearLevel &&
		!exemptFromCheck(cand, slot, models.CategoryCourse) {
		out = append(out, models.Conflict{
			Type:              models.ConflictCourseDuplicate,
			Severity:          models.SeverityError,
			Message:           "this course already meets at an overlapping time for the same year level",
			ConflictingSlotID: slot.ID,
		})
	}

	if cohort := checkCohortPair(cand, slot); cohort != nil {
		out = append(out, *cohort)
	}

	return out, true
}

// checkCohortPair grades cohort availability. A split occupant only takes
// part of the cohort away, so it degrades to a warning; a joint occupant
// takes everyone. Cross-department same-year overlap stays a warning since
// shared cohorts across departments cannot be assumed.
func checkCohortPair(cand, slot models.TimeSlot) *models.Conflict {
	if cand.CourseID == "" || cand.CourseID == slot.CourseID || cand.YearLevel != slot.YearLevel {
		return nil
	}
	if exemptFromCheck(cand, slot, models.CategoryStudent) {
		return nil
	}
	sameDept := cand.DepartmentID != "" && cand.DepartmentID == slot.DepartmentID
	if !sameDept {
		return &models.Conflict{
			Type:              models.ConflictCohortOverlap,
			Severity:          models.SeverityWarning,
			Message:           fmt.Sprintf("year %d students in another department have class at this time", slot.YearLevel),
			ConflictingSlotID: slot.ID,
		}
	}
	switch slot.GroupType {
	case models.GroupSplit:
		return &models.Conflict{
			Type:              models.ConflictCohortOverlap,
			Severity:          models.SeverityWarning,
			Message:           fmt.Sprintf("part of the year %d cohort is in a split sub-group at this time", slot.YearLevel),
			ConflictingSlotID: slot.ID,
		}
	case models.GroupJoint:
		return &models.Conflict{
			Type:              models.ConflictCohortOverlap,
			Severity:          models.SeverityError,
			Message:           fmt.Sprintf("the year %d cohort is attending a joint session at this time", slot.YearLevel),
			ConflictingSlotID: slot.ID,
		}
	default:
		return &models.Conflict{
			Type:              models.ConflictCohortOverlap,
			Severity:          models.SeverityError,
			Message:           fmt.Sprintf("the year %d cohort already has class at this time", slot.YearLevel),
			ConflictingSlotID: slot.ID,
		}
	}
}

func (v *CandidateValidator) checkAdd(c dto.AddCandidate, roster []models.TimeSlot) ([]models.Conflict, []models.TimeSlot) {
	cand := candidateSlot(c.CandidateBase, c.CourseID, c.FacultyID, c.RoomID, models.GroupRegular)
	var out []models.Conflict
	var blockers []models.TimeSlot
	for _, slot := range roster {
		found, collided := checkPair(cand, slot)
		out = append(out, found...)
		if collided && len(found) > 0 {
			blockers = append(blockers, slot)
		}
	}
	return out, blockers
}

func (v *CandidateValidator) checkJoint(c dto.JointCandidate, roster []models.TimeSlot, refs models.ReferenceSet) ([]models.Conflict, []models.TimeSlot) {
	var out []models.Conflict
	courses := uniqueStrings(c.CourseIDs)

	// Composition checks against reference data. Joint courses must share a
	// year level; crossing departments is allowed but worth flagging.
	var firstYear int
	var firstDept string
	for i, courseID := range courses {
		course, ok := refs.Courses[courseID]
		if !ok {
			if len(refs.Courses) > 0 {
				out = append(out, models.Conflict{
					Type:     models.ConflictJointComposition,
					Severity: models.SeverityError,
					Message:  fmt.Sprintf("joint course %s does not exist", courseID),
				})
			}
			continue
		}
		if i == 0 || firstYear == 0 {
			firstYear = course.YearLevel
			firstDept = course.DepartmentID
			continue
		}
		if course.YearLevel != firstYear {
			out = append(out, models.Conflict{
				Type:     models.ConflictJointComposition,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("joint courses span year levels %d and %d", firstYear, course.YearLevel),
			})
		}
		if course.DepartmentID != firstDept {
			out = append(out, models.Conflict{
				Type:     models.ConflictJointComposition,
				Severity: models.SeverityWarning,
				Message:  "joint courses span multiple departments",
			})
		}
	}

	var blockers []models.TimeSlot
	seen := map[string]bool{}
	for _, courseID := range courses {
		cand := candidateSlot(c.CandidateBase, courseID, c.FacultyID, c.RoomID, models.GroupJoint)
		for _, slot := range roster {
			found, collided := checkPair(cand, slot)
			// The faculty and room pairing repeats per joint course; report
			// each clashing slot once.
			for _, f := range found {
				key := string(f.Type) + "|" + f.ConflictingSlotID + "|" + f.Message
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, f)
			}
			if collided && len(found) > 0 {
				blockers = append(blockers, slot)
			}
		}
	}
	return out, blockers
}

func (v *CandidateValidator) checkSplit(c dto.SplitCandidate, roster []models.TimeSlot) ([]models.Conflict, []models.TimeSlot) {
	var out []models.Conflict
	var blockers []models.TimeSlot

	type resolvedGroup struct {
		name      string
		facultyID string
		roomID    string
		start     string
		end       string
	}

	resolved := make([]resolvedGroup, 0, len(c.Groups))
	for _, g := range c.Groups {
		rg := resolvedGroup{
			name:      g.Name,
			facultyID: coalesce(g.FacultyID, c.FacultyID),
			roomID:    coalesce(g.RoomID, c.RoomID),
			start:     coalesce(g.StartTime, c.StartTime),
			end:       coalesce(g.EndTime, c.EndTime),
		}
		// Every sub-group needs a room; faculty may stay unassigned until
		// staffing is settled, so its absence is not a finding.
		if rg.roomID == "" {
			out = append(out, models.Conflict{
				Type:     models.ConflictSplitComposition,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("sub-group %q has no room assigned", g.Name),
			})
		}
		if g.StartTime != "" || g.EndTime != "" {
			out = append(out, checkWindow(rg.start, rg.end, fmt.Sprintf("sub-group %q", g.Name))...)
		}
		resolved = append(resolved, rg)
	}

	// Sub-groups run independently: two of them may not claim the same
	// faculty member or room at overlapping times.
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			a, b := resolved[i], resolved[j]
			aStart, aOK := parseClock(a.start)
			aEnd, aOK2 := parseClock(a.end)
			bStart, bOK := parseClock(b.start)
			bEnd, bOK2 := parseClock(b.end)
			if !aOK || !aOK2 || !bOK || !bOK2 {
				continue
			}
			if !rangesOverlap(aStart, aEnd, bStart, bEnd) {
				continue
			}
			if a.facultyID != "" && a.facultyID == b.facultyID {
				out = append(out, models.Conflict{
					Type:     models.ConflictSplitComposition,
					Severity: models.SeverityError,
					Message:  fmt.Sprintf("sub-groups %q and %q share faculty at overlapping times", a.name, b.name),
				})
			}
			if a.roomID != "" && a.roomID == b.roomID {
				out = append(out, models.Conflict{
					Type:     models.ConflictSplitComposition,
					Severity: models.SeverityError,
					Message:  fmt.Sprintf("sub-groups %q and %q share room %s at overlapping times", a.name, b.name, a.roomID),
				})
			}
		}
	}

	// Each sub-group against the existing roster.
	seen := map[string]bool{}
	for _, rg := range resolved {
		base := c.CandidateBase
		base.StartTime = rg.start
		base.EndTime = rg.end
		cand := candidateSlot(base, c.CourseID, rg.facultyID, rg.roomID, models.GroupSplit)
		for _, slot := range roster {
			found, collided := checkPair(cand, slot)
			for _, f := range found {
				key := string(f.Type) + "|" + f.ConflictingSlotID + "|" + f.Message
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, f)
			}
			if collided && len(found) > 0 {
				blockers = append(blockers, slot)
			}
		}
	}

	return out, blockers
}

// checkDuration flags unusually short or long sessions. These never block.
func (v *CandidateValidator) checkDuration(base dto.CandidateBase) []models.Conflict {
	start, okStart := parseClock(base.StartTime)
	end, okEnd := parseClock(base.EndTime)
	if !okStart || !okEnd || end <= start {
		return nil
	}
	duration := end - start
	if duration < v.cfg.MinDurationMinutes {
		return []models.Conflict{{
			Type:     models.ConflictDuration,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("session is only %d minutes long", duration),
		}}
	}
	if duration > v.cfg.MaxDurationMinutes {
		return []models.Conflict{{
			Type:     models.ConflictDuration,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("session is %d minutes long, consider splitting it", duration),
		}}
	}
	return nil
}

// buildSuggestions turns findings into short human hints: the earliest clear
// start after the blockers, resource alternatives, and mode-specific advice.
func (v *CandidateValidator) buildSuggestions(candidate dto.Candidate, conflicts []models.Conflict, blockers []models.TimeSlot) []string {
	if len(conflicts) == 0 {
		return nil
	}

	var out []string
	add := func(s string) {
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		if len(out) < v.cfg.MaxSuggestions {
			out = append(out, s)
		}
	}

	types := map[models.ConflictType]bool{}
	for _, c := range conflicts {
		types[c.Type] = true
	}

	if len(blockers) > 0 {
		latestEnd := 0
		for _, slot := range blockers {
			if _, end, ok := slotWindow(slot); ok && end > latestEnd {
				latestEnd = end
			}
		}
		if latestEnd > 0 {
			add(fmt.Sprintf("Consider starting at %s, after the last conflicting session ends", minutesToClock(latestEnd)))
		}
	}

	if types[models.ConflictRoomOverlap] {
		add("Pick a different room for this time window")
	}
	if types[models.ConflictFacultyOverlap] {
		add("Assign a different faculty member or move the session")
	}
	if types[models.ConflictCourseDuplicate] || types[models.ConflictDuplicateSlot] {
		add("This course already meets at this time; schedule the extra session on another day")
	}
	if types[models.ConflictCohortOverlap] {
		add("Choose a window when the cohort is free, or split the class")
	}
	if types[models.ConflictJointComposition] {
		add("Joint courses must share a year level; review the course list")
	}
	if types[models.ConflictSplitComposition] {
		add("Give each sub-group its own room and faculty, or stagger their time windows")
	}
	if candidate.Mode() == dto.OperationJoint && (types[models.ConflictFacultyOverlap] || types[models.ConflictRoomOverlap]) {
		add("Joint sessions reserve the faculty and room exclusively; schedule other sessions around them")
	}

	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
