package models

import "time"

// GroupType classifies how a slot relates to other slots sharing its group id.
type GroupType string

const (
	GroupRegular GroupType = "regular"
	GroupSplit   GroupType = "split"
	GroupJoint   GroupType = "joint"
)

// LessonKind describes the teaching format of a slot.
type LessonKind string

const (
	LessonLecture  LessonKind = "lecture"
	LessonTutorial LessonKind = "tutorial"
	LessonLab      LessonKind = "lab"
	LessonWorkshop LessonKind = "workshop"
	LessonSeminar  LessonKind = "seminar"
)

// TimeSlot is the atomic scheduling unit: one course taught by one faculty
// member in one room at a fixed day and wall-clock window. GroupType and
// GroupID jointly determine which other slots it may coincide with.
type TimeSlot struct {
	ID           string     `db:"id" json:"id"`
	DepartmentID string     `db:"department_id" json:"department_id"`
	CourseID     string     `db:"course_id" json:"course_id"`
	FacultyID    string     `db:"faculty_id" json:"faculty_id"`
	RoomID       string     `db:"room_id" json:"room_id"`
	YearLevel    int        `db:"year_level" json:"year_level"`
	DayOfWeek    int        `db:"day_of_week" json:"day_of_week"`
	StartTime    string     `db:"start_time" json:"start_time"`
	EndTime      string     `db:"end_time" json:"end_time"`
	AcademicYear string     `db:"academic_year" json:"academic_year"`
	Semester     string     `db:"semester" json:"semester"`
	LessonKind   LessonKind `db:"lesson_kind" json:"lesson_kind"`
	GroupType    GroupType  `db:"group_type" json:"group_type,omitempty"`
	GroupID      string     `db:"group_id" json:"group_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// SameMeeting reports whether two slots describe an identical booking in
// every scheduling-relevant dimension.
func (s TimeSlot) SameMeeting(other TimeSlot) bool {
	return s.DayOfWeek == other.DayOfWeek &&
		s.StartTime == other.StartTime &&
		s.EndTime == other.EndTime &&
		s.FacultyID == other.FacultyID &&
		s.RoomID == other.RoomID &&
		s.CourseID == other.CourseID &&
		s.YearLevel == other.YearLevel
}

// TimeSlotFilter describes query params for listing slots.
type TimeSlotFilter struct {
	AcademicYear string
	Semester     string
	DepartmentID string
	CourseID     string
	FacultyID    string
	RoomID       string
	DayOfWeek    int
	YearLevel    int
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
