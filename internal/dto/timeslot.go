package dto

import "github.com/noah-isme/campus-timetable-api/internal/models"

// CreateTimeSlotRequest creates one ordinary slot after validation.
type CreateTimeSlotRequest struct {
	DayOfWeek    int               `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime    string            `json:"start_time" validate:"required"`
	EndTime      string            `json:"end_time" validate:"required"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Semester     string            `json:"semester" validate:"required"`
	YearLevel    int               `json:"year_level" validate:"required,min=1"`
	DepartmentID string            `json:"department_id" validate:"required"`
	CourseID     string            `json:"course_id" validate:"required"`
	FacultyID    string            `json:"faculty_id" validate:"required"`
	RoomID       string            `json:"room_id" validate:"required"`
	LessonKind   models.LessonKind `json:"lesson_kind,omitempty"`
}

// UpdateTimeSlotRequest moves or edits an existing slot.
type UpdateTimeSlotRequest struct {
	DayOfWeek    int               `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime    string            `json:"start_time" validate:"required"`
	EndTime      string            `json:"end_time" validate:"required"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Semester     string            `json:"semester" validate:"required"`
	YearLevel    int               `json:"year_level" validate:"required,min=1"`
	DepartmentID string            `json:"department_id" validate:"required"`
	CourseID     string            `json:"course_id" validate:"required"`
	FacultyID    string            `json:"faculty_id" validate:"required"`
	RoomID       string            `json:"room_id" validate:"required"`
	LessonKind   models.LessonKind `json:"lesson_kind,omitempty"`
}

// CreateJointSessionRequest creates one slot per course sharing a joint group.
type CreateJointSessionRequest struct {
	DayOfWeek    int               `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime    string            `json:"start_time" validate:"required"`
	EndTime      string            `json:"end_time" validate:"required"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Semester     string            `json:"semester" validate:"required"`
	YearLevel    int               `json:"year_level" validate:"required,min=1"`
	DepartmentID string            `json:"department_id" validate:"required"`
	CourseIDs    []string          `json:"course_ids" validate:"required,min=2,dive,required"`
	FacultyID    string            `json:"faculty_id" validate:"required"`
	RoomID       string            `json:"room_id" validate:"required"`
	LessonKind   models.LessonKind `json:"lesson_kind,omitempty"`
}

// CreateSplitClassRequest creates one slot per sub-group sharing a split group.
type CreateSplitClassRequest struct {
	DayOfWeek    int               `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime    string            `json:"start_time" validate:"required"`
	EndTime      string            `json:"end_time" validate:"required"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Semester     string            `json:"semester" validate:"required"`
	YearLevel    int               `json:"year_level" validate:"required,min=1"`
	DepartmentID string            `json:"department_id" validate:"required"`
	CourseID     string            `json:"course_id" validate:"required"`
	FacultyID    string            `json:"faculty_id,omitempty"`
	RoomID       string            `json:"room_id,omitempty"`
	Groups       []SplitGroup      `json:"split_groups" validate:"required,min=2,dive"`
	LessonKind   models.LessonKind `json:"lesson_kind,omitempty"`
}
