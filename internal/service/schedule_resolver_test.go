package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
)

func testResolver() *ScheduleResolver {
	return NewScheduleResolver(NewConstraintRegistry(nil), config.EngineConfig{}, nil)
}

func findByType(conflicts []models.EnhancedConflict, t models.ConflictType) []models.EnhancedConflict {
	var out []models.EnhancedConflict
	for _, c := range conflicts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func TestDetectConflictsCleanSchedule(t *testing.T) {
	r := testResolver()
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.FacultyID = "fac-2"
			s.RoomID = "room-2"
			s.YearLevel = 3
		}),
	}

	conflicts := r.DetectConflicts(roster, models.ReferenceSet{})
	assert.Empty(t, conflicts)
}

func TestDetectConflictsRoomOverlap(t *testing.T) {
	r := testResolver()
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.FacultyID = "fac-2"
			s.YearLevel = 3
		}),
	}

	conflicts := r.DetectConflicts(roster, models.ReferenceSet{})
	found := findByType(conflicts, models.ConflictRoomOverlap)
	require.Len(t, found, 1)
	assert.Equal(t, models.AuditHigh, found[0].Severity)
	assert.ElementsMatch(t, []string{"a", "b"}, found[0].AffectedSlots)
	assert.False(t, found[0].AutoResolvable, "double-bookings need a human decision")
	assert.NotEmpty(t, found[0].ID)
	assert.NotEmpty(t, found[0].Suggestions, "non-resolvable conflicts still carry manual suggestions")
}

func TestDetectConflictsFacultyOverlap(t *testing.T) {
	r := testResolver()
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.RoomID = "room-2"
			s.YearLevel = 3
		}),
	}

	conflicts := r.DetectConflicts(roster, models.ReferenceSet{})
	found := findByType(conflicts, models.ConflictFacultyOverlap)
	require.Len(t, found, 1)
	assert.Equal(t, models.AuditHigh, found[0].Severity)
	assert.False(t, found[0].AutoResolvable)
}

func TestDetectConflictsJointGroupExempt(t *testing.T) {
	r := testResolver()
	asJoint := func(s *models.TimeSlot) {
		s.GroupType = models.GroupJoint
		s.GroupID = "jg-1"
	}
	roster := []models.TimeSlot{
		existingSlot("a", asJoint),
		existingSlot("b", asJoint, func(s *models.TimeSlot) {
			s.CourseID = "math-201"
			s.DepartmentID = "math"
		}),
	}

	conflicts := r.DetectConflicts(roster, models.ReferenceSet{})
	assert.Empty(t, conflicts, "joint group members legitimately share faculty and room")
}

func TestDetectConflictsSplitGroupSharedRoomStillFlagged(t *testing.T) {
	r := testResolver()
	asSplit := func(s *models.TimeSlot) {
		s.GroupType = models.GroupSplit
		s.GroupID = "sg-1"
	}
	roster := []models.TimeSlot{
		existingSlot("a", asSplit, func(s *models.TimeSlot) { s.FacultyID = "fac-1" }),
		existingSlot("b", asSplit, func(s *models.TimeSlot) { s.FacultyID = "fac-2" }),
	}

	conflicts := r.DetectConflicts(roster, models.ReferenceSet{})
	found := findByType(conflicts, models.ConflictRoomOverlap)
	require.Len(t, found, 1, "split sub-groups may not share a room at the same time")
	assert.Empty(t, findByType(conflicts, models.ConflictCourseDuplicate),
		"split sub-groups of one course are not duplicates of each other")
}

func TestDetectConflictsCourseDuplicate(t *testing.T) {
	r := testResolver()
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.FacultyID = "fac-2"
			s.RoomID = "room-2"
		}),
	}

	conflicts := r.DetectConflicts(roster, models.ReferenceSet{})
	found := findByType(conflicts, models.ConflictCourseDuplicate)
	require.Len(t, found, 1)
	assert.True(t, found[0].AutoResolvable)
}

func TestDetectConflictsRoomTypeMismatch(t *testing.T) {
	r := testResolver()
	refs := models.NewReferenceSet(nil,
		[]models.Room{
			{ID: "room-1", Capacity: 60, IsLab: false},
			{ID: "room-2", Capacity: 60, IsLab: true},
		},
		[]models.Course{
			{ID: "cs-201", RequiresLab: true, StudentCount: 40},
			{ID: "cs-300", RequiresLab: false, StudentCount: 40},
		},
		nil,
	)
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.FacultyID = "fac-2"
			s.RoomID = "room-2"
			s.YearLevel = 3
		}),
	}

	conflicts := r.DetectConflicts(roster, refs)
	found := findByType(conflicts, models.ConflictRoomTypeMismatch)
	require.Len(t, found, 2)

	bySeverity := map[models.AuditSeverity]int{}
	for _, c := range found {
		bySeverity[c.Severity]++
		assert.True(t, c.AutoResolvable)
	}
	assert.Equal(t, 1, bySeverity[models.AuditMedium], "lab course in a plain room")
	assert.Equal(t, 1, bySeverity[models.AuditLow], "plain course wasting a lab")
}

func TestDetectConflictsCapacityProblems(t *testing.T) {
	r := testResolver()
	refs := models.NewReferenceSet(nil,
		[]models.Room{{ID: "room-1", Capacity: 25}},
		[]models.Course{{ID: "cs-201", StudentCount: 50}},
		nil,
	)
	roster := []models.TimeSlot{existingSlot("a")}

	conflicts := r.DetectConflicts(roster, refs)
	found := findByType(conflicts, models.ConflictRoomCapacity)
	require.Len(t, found, 1)
	assert.Equal(t, models.AuditMedium, found[0].Severity)
	assert.True(t, found[0].AutoResolvable)
}

func TestDetectConflictsTightSchedule(t *testing.T) {
	r := testResolver()
	refs := models.NewReferenceSet(nil,
		[]models.Room{
			{ID: "room-1", Building: "north", Capacity: 60},
			{ID: "room-2", Building: "south", Capacity: 60},
		},
		nil, nil,
	)
	roster := []models.TimeSlot{
		existingSlot("a", func(s *models.TimeSlot) { s.StartTime, s.EndTime = "09:00", "10:00" }),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.RoomID = "room-2"
			s.YearLevel = 3
			s.StartTime, s.EndTime = "10:05", "11:00"
		}),
	}

	conflicts := r.DetectConflicts(roster, refs)
	found := findByType(conflicts, models.ConflictTightSchedule)
	require.Len(t, found, 1)
	assert.Equal(t, models.AuditLow, found[0].Severity)
	assert.True(t, found[0].AutoResolvable)
	assert.Contains(t, found[0].Description, "5 minutes")
}

func TestDetectConflictsStudentOverlap(t *testing.T) {
	r := testResolver()
	refs := models.NewReferenceSet(nil, nil, nil, []models.Student{
		{ID: "st-1", EnrolledCourses: []string{"cs-201", "math-301"}},
		{ID: "st-2", EnrolledCourses: []string{"cs-201", "math-301"}},
		{ID: "st-3", EnrolledCourses: []string{"cs-201"}},
	})
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "math-301"
			s.DepartmentID = "math"
			s.FacultyID = "fac-2"
			s.RoomID = "room-2"
			s.YearLevel = 3
		}),
	}

	conflicts := r.DetectConflicts(roster, refs)
	found := findByType(conflicts, models.ConflictStudentOverlap)
	require.Len(t, found, 1)
	assert.Equal(t, models.AuditHigh, found[0].Severity)
	assert.Contains(t, found[0].Description, "2 students")
	assert.Contains(t, found[0].Details, "affected students: 2")
}

func TestDetectConflictsOrderedBySeverity(t *testing.T) {
	r := testResolver()
	refs := models.NewReferenceSet(nil,
		[]models.Room{
			{ID: "room-1", Building: "north", Capacity: 60},
			{ID: "room-2", Building: "south", Capacity: 60},
		},
		nil, nil,
	)
	roster := []models.TimeSlot{
		// A room double-booking at 09:00.
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.FacultyID = "fac-2"
			s.YearLevel = 3
		}),
		// A tight building change for fac-3 in the afternoon.
		existingSlot("c", func(s *models.TimeSlot) {
			s.CourseID = "cs-310"
			s.FacultyID = "fac-3"
			s.YearLevel = 3
			s.StartTime, s.EndTime = "13:00", "14:00"
		}),
		existingSlot("d", func(s *models.TimeSlot) {
			s.CourseID = "cs-320"
			s.FacultyID = "fac-3"
			s.RoomID = "room-2"
			s.YearLevel = 4
			s.StartTime, s.EndTime = "14:05", "15:00"
		}),
	}

	conflicts := r.DetectConflicts(roster, refs)
	require.GreaterOrEqual(t, len(conflicts), 2)

	last := severityRank(conflicts[0].Severity)
	for _, c := range conflicts[1:] {
		rank := severityRank(c.Severity)
		assert.LessOrEqual(t, rank, last, "conflicts must be ordered high to low")
		last = rank
	}
	assert.Equal(t, models.AuditHigh, conflicts[0].Severity)
	assert.Equal(t, models.AuditLow, conflicts[len(conflicts)-1].Severity)
}

func TestDetectConflictsDeterministic(t *testing.T) {
	r := testResolver()
	refs := models.NewReferenceSet(nil,
		[]models.Room{
			{ID: "room-1", Building: "north", Capacity: 25},
			{ID: "room-2", Building: "south", Capacity: 60},
		},
		[]models.Course{{ID: "cs-201", StudentCount: 50}},
		nil,
	)
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.FacultyID = "fac-2"
			s.YearLevel = 3
		}),
		existingSlot("c", func(s *models.TimeSlot) {
			s.CourseID = "cs-310"
			s.FacultyID = "fac-3"
			s.YearLevel = 3
			s.StartTime, s.EndTime = "13:00", "14:00"
		}),
		existingSlot("d", func(s *models.TimeSlot) {
			s.CourseID = "cs-320"
			s.FacultyID = "fac-3"
			s.RoomID = "room-2"
			s.YearLevel = 4
			s.StartTime, s.EndTime = "14:05", "15:00"
		}),
	}

	first := r.DetectConflicts(roster, refs)
	second := r.DetectConflicts(roster, refs)
	require.NotEmpty(t, first)
	// Identical input yields identical output, ids included: each id is
	// derived from the finding, not generated per call.
	assert.Equal(t, first, second)
	for _, c := range first {
		assert.Equal(t, conflictID(c.Type, c.AffectedSlots), c.ID)
	}
}

func TestDetectConflictsDoesNotMutateInput(t *testing.T) {
	r := testResolver()
	roster := []models.TimeSlot{
		existingSlot("a"),
		existingSlot("b", func(s *models.TimeSlot) {
			s.CourseID = "cs-300"
			s.YearLevel = 3
		}),
	}
	snapshot := cloneSlots(roster)

	r.DetectConflicts(roster, models.ReferenceSet{})
	assert.Equal(t, snapshot, roster)
}
