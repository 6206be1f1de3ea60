package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
)

func testValidator() *CandidateValidator {
	return NewCandidateValidator(config.EngineConfig{}, nil)
}

func baseCandidate() dto.CandidateBase {
	return dto.CandidateBase{
		DayOfWeek:    2,
		StartTime:    "09:00",
		EndTime:      "10:30",
		AcademicYear: "2026",
		Semester:     "1",
		YearLevel:    2,
		DepartmentID: "cs",
	}
}

func existingSlot(id string, mutate ...func(*models.TimeSlot)) models.TimeSlot {
	slot := models.TimeSlot{
		ID:           id,
		DepartmentID: "cs",
		CourseID:     "cs-201",
		FacultyID:    "fac-1",
		RoomID:       "room-1",
		YearLevel:    2,
		DayOfWeek:    2,
		StartTime:    "09:00",
		EndTime:      "10:30",
		AcademicYear: "2026",
		Semester:     "1",
		LessonKind:   models.LessonLecture,
		GroupType:    models.GroupRegular,
	}
	for _, fn := range mutate {
		fn(&slot)
	}
	return slot
}

func conflictTypes(result models.ConflictResult) map[models.ConflictType]models.ConflictSeverity {
	out := map[models.ConflictType]models.ConflictSeverity{}
	for _, c := range result.Conflicts {
		out[c.Type] = c.Severity
	}
	return out
}

func TestDetectCleanAddCandidate(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-9",
		RoomID:        "room-9",
	}
	candidate.YearLevel = 3

	result := v.Detect(candidate, []models.TimeSlot{existingSlot("s1")}, models.ReferenceSet{})
	assert.False(t, result.HasConflicts)
	assert.True(t, result.CanProceed)
	assert.Empty(t, result.Conflicts)
}

func TestDetectMissingFieldsShortCircuit(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: dto.CandidateBase{
			DayOfWeek: 2,
			StartTime: "25:00",
			EndTime:   "10:00",
		},
	}

	// The roster contains a slot that would also collide; basic problems
	// must suppress the resource scan entirely.
	result := v.Detect(candidate, []models.TimeSlot{existingSlot("s1")}, models.ReferenceSet{})
	require.True(t, result.HasConflicts)
	assert.False(t, result.CanProceed)

	types := conflictTypes(result)
	assert.Contains(t, types, models.ConflictMissingField)
	assert.Contains(t, types, models.ConflictTimeFormat)
	assert.NotContains(t, types, models.ConflictFacultyOverlap)
	assert.NotContains(t, types, models.ConflictRoomOverlap)
}

func TestDetectTimeOrderRejected(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-9",
		RoomID:        "room-9",
	}
	candidate.StartTime = "11:00"
	candidate.EndTime = "09:00"

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictTimeOrder])
}

func TestDetectFacultyAndRoomOverlap(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-1",
		RoomID:        "room-1",
	}
	candidate.YearLevel = 3

	result := v.Detect(candidate, []models.TimeSlot{existingSlot("s1")}, models.ReferenceSet{})
	require.True(t, result.HasConflicts)
	assert.False(t, result.CanProceed)

	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictFacultyOverlap])
	assert.Equal(t, models.SeverityError, types[models.ConflictRoomOverlap])
	assert.NotEmpty(t, result.Suggestions)
}

func TestDetectAdjacentWindowsDoNotOverlap(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-1",
		RoomID:        "room-1",
	}
	candidate.YearLevel = 3
	candidate.StartTime = "10:30"
	candidate.EndTime = "12:00"

	// Existing slot ends exactly when the candidate starts.
	result := v.Detect(candidate, []models.TimeSlot{existingSlot("s1")}, models.ReferenceSet{})
	assert.True(t, result.CanProceed)
}

func TestDetectDuplicateSlot(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-201",
		FacultyID:     "fac-1",
		RoomID:        "room-1",
	}

	result := v.Detect(candidate, []models.TimeSlot{existingSlot("s1")}, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictDuplicateSlot])
}

func TestDetectExcludeSlotSkipsEditedSlot(t *testing.T) {
	v := testValidator()
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-201",
		FacultyID:     "fac-1",
		RoomID:        "room-1",
	}
	candidate.ExcludeSlotID = "s1"

	result := v.Detect(candidate, []models.TimeSlot{existingSlot("s1")}, models.ReferenceSet{})
	assert.True(t, result.CanProceed)
}

func TestDetectCohortSeverityByOccupantKind(t *testing.T) {
	cases := []struct {
		name      string
		groupType models.GroupType
		want      models.ConflictSeverity
	}{
		{"regular occupant blocks", models.GroupRegular, models.SeverityError},
		{"joint occupant blocks", models.GroupJoint, models.SeverityError},
		{"split occupant warns", models.GroupSplit, models.SeverityWarning},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := testValidator()
			occupant := existingSlot("s1", func(s *models.TimeSlot) {
				s.GroupType = tc.groupType
				if tc.groupType != models.GroupRegular {
					s.GroupID = "grp-1"
				}
				s.FacultyID = "fac-other"
				s.RoomID = "room-other"
			})
			candidate := dto.AddCandidate{
				CandidateBase: baseCandidate(),
				CourseID:      "cs-300",
				FacultyID:     "fac-9",
				RoomID:        "room-9",
			}

			result := v.Detect(candidate, []models.TimeSlot{occupant}, models.ReferenceSet{})
			types := conflictTypes(result)
			assert.Equal(t, tc.want, types[models.ConflictCohortOverlap])
		})
	}
}

func TestDetectCrossDepartmentCohortWarns(t *testing.T) {
	v := testValidator()
	occupant := existingSlot("s1", func(s *models.TimeSlot) {
		s.DepartmentID = "math"
		s.FacultyID = "fac-other"
		s.RoomID = "room-other"
	})
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-9",
		RoomID:        "room-9",
	}

	result := v.Detect(candidate, []models.TimeSlot{occupant}, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityWarning, types[models.ConflictCohortOverlap])
	assert.True(t, result.CanProceed)
}

func TestDetectDurationWarnings(t *testing.T) {
	v := testValidator()

	short := dto.AddCandidate{CandidateBase: baseCandidate(), CourseID: "c", FacultyID: "f", RoomID: "r"}
	short.EndTime = "09:15"
	result := v.Detect(short, nil, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityWarning, types[models.ConflictDuration])
	assert.True(t, result.CanProceed, "duration warnings never block")

	long := dto.AddCandidate{CandidateBase: baseCandidate(), CourseID: "c", FacultyID: "f", RoomID: "r"}
	long.StartTime = "08:00"
	long.EndTime = "13:00"
	result = v.Detect(long, nil, models.ReferenceSet{})
	types = conflictTypes(result)
	assert.Equal(t, models.SeverityWarning, types[models.ConflictDuration])
}

func TestDetectJointRequiresTwoDistinctCourses(t *testing.T) {
	v := testValidator()
	candidate := dto.JointCandidate{
		CandidateBase: baseCandidate(),
		CourseIDs:     []string{"cs-300", "cs-300"},
		FacultyID:     "fac-9",
		RoomID:        "room-9",
	}

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictJointComposition])
}

func TestDetectJointYearLevelMismatch(t *testing.T) {
	v := testValidator()
	refs := models.NewReferenceSet(nil, nil, []models.Course{
		{ID: "cs-300", DepartmentID: "cs", YearLevel: 3},
		{ID: "cs-101", DepartmentID: "cs", YearLevel: 1},
	}, nil)
	candidate := dto.JointCandidate{
		CandidateBase: baseCandidate(),
		CourseIDs:     []string{"cs-300", "cs-101"},
		FacultyID:     "fac-9",
		RoomID:        "room-9",
	}

	result := v.Detect(candidate, nil, refs)
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictJointComposition])
}

func TestDetectJointGroupExemption(t *testing.T) {
	v := testValidator()
	// An existing member of the same joint group shares faculty and room
	// without raising conflicts.
	member := existingSlot("s1", func(s *models.TimeSlot) {
		s.GroupType = models.GroupJoint
		s.GroupID = "joint-1"
		s.CourseID = "cs-210"
		s.YearLevel = 2
	})
	candidate := dto.JointCandidate{
		CandidateBase: baseCandidate(),
		CourseIDs:     []string{"cs-211", "cs-212"},
		FacultyID:     "fac-1",
		RoomID:        "room-1",
	}
	candidate.GroupID = "joint-1"

	result := v.Detect(candidate, []models.TimeSlot{member}, models.ReferenceSet{})
	assert.True(t, result.CanProceed, "same joint group must be exempt: %v", result.Conflicts)
}

func TestDetectSplitRequiresTwoGroups(t *testing.T) {
	v := testValidator()
	candidate := dto.SplitCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-9",
		RoomID:        "room-9",
		Groups:        []dto.SplitGroup{{Name: "A"}},
	}

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictSplitComposition])
}

func TestDetectSplitGroupsSharingRoomBlocked(t *testing.T) {
	v := testValidator()
	candidate := dto.SplitCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		Groups: []dto.SplitGroup{
			{Name: "A", FacultyID: "fac-1", RoomID: "room-1"},
			{Name: "B", FacultyID: "fac-2", RoomID: "room-1"},
		},
	}

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictSplitComposition])
	assert.False(t, result.CanProceed)
}

func TestDetectSplitGroupsStaggeredTimesAllowed(t *testing.T) {
	v := testValidator()
	candidate := dto.SplitCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		Groups: []dto.SplitGroup{
			{Name: "A", FacultyID: "fac-1", RoomID: "room-1", StartTime: "09:00", EndTime: "10:00"},
			{Name: "B", FacultyID: "fac-1", RoomID: "room-1", StartTime: "10:00", EndTime: "11:00"},
		},
	}
	candidate.YearLevel = 3

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	assert.True(t, result.CanProceed, "staggered sub-groups may share resources: %v", result.Conflicts)
}

func TestDetectSplitWithoutFacultyClean(t *testing.T) {
	v := testValidator()
	// Rooms are mandatory per sub-group; faculty assignments may be settled
	// later and must not block the submission.
	candidate := dto.SplitCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		Groups: []dto.SplitGroup{
			{Name: "A", RoomID: "room-1"},
			{Name: "B", RoomID: "room-2"},
		},
	}
	candidate.YearLevel = 3

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	assert.False(t, result.HasConflicts, "faculty-less sub-groups are clean: %v", result.Conflicts)
	assert.True(t, result.CanProceed)
}

func TestDetectSplitMissingRoomBlocked(t *testing.T) {
	v := testValidator()
	candidate := dto.SplitCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-9",
		Groups: []dto.SplitGroup{
			{Name: "A", RoomID: "room-1"},
			{Name: "B"},
		},
	}

	result := v.Detect(candidate, nil, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictSplitComposition])
}

func TestDetectSplitSameGroupRosterFacultyStillBlocked(t *testing.T) {
	v := testValidator()
	// A persisted sub-group of the same split group: course duplication is
	// exempt, but claiming its faculty at the same time is not.
	member := existingSlot("s1", func(s *models.TimeSlot) {
		s.GroupType = models.GroupSplit
		s.GroupID = "split-1"
		s.CourseID = "cs-300"
	})
	candidate := dto.SplitCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		Groups: []dto.SplitGroup{
			{Name: "C", FacultyID: "fac-1", RoomID: "room-7"},
			{Name: "D", FacultyID: "fac-8", RoomID: "room-8"},
		},
	}
	candidate.GroupID = "split-1"

	result := v.Detect(candidate, []models.TimeSlot{member}, models.ReferenceSet{})
	types := conflictTypes(result)
	assert.Equal(t, models.SeverityError, types[models.ConflictFacultyOverlap])
	assert.NotContains(t, types, models.ConflictCourseDuplicate)
}

func TestDetectSuggestionsAfterLatestConflict(t *testing.T) {
	v := testValidator()
	blocker := existingSlot("s1", func(s *models.TimeSlot) {
		s.EndTime = "11:00"
	})
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-1",
		RoomID:        "room-9",
	}
	candidate.YearLevel = 3

	result := v.Detect(candidate, []models.TimeSlot{blocker}, models.ReferenceSet{})
	require.NotEmpty(t, result.Suggestions)
	assert.Contains(t, result.Suggestions[0], "11:00")
	assert.LessOrEqual(t, len(result.Suggestions), 5)
}

func TestDetectDeterministicOutput(t *testing.T) {
	v := testValidator()
	roster := []models.TimeSlot{
		existingSlot("s1"),
		existingSlot("s2", func(s *models.TimeSlot) { s.RoomID = "room-2" }),
	}
	candidate := dto.AddCandidate{
		CandidateBase: baseCandidate(),
		CourseID:      "cs-300",
		FacultyID:     "fac-1",
		RoomID:        "room-1",
	}
	candidate.YearLevel = 3

	first := v.Detect(candidate, roster, models.ReferenceSet{})
	second := v.Detect(candidate, roster, models.ReferenceSet{})
	assert.Equal(t, first, second)
}
