package dto

import (
	"time"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// AuditQuery filters a whole-schedule audit to one academic period.
type AuditQuery struct {
	AcademicYear string `form:"academic_year" json:"academic_year"`
	Semester     string `form:"semester" json:"semester"`
	Refresh      bool   `form:"refresh" json:"refresh"`
}

// AuditSummary aggregates audit findings per severity.
type AuditSummary struct {
	Total          int `json:"total"`
	High           int `json:"high"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
	AutoResolvable int `json:"auto_resolvable"`
}

// AuditResponse returns the ranked conflict list for a schedule audit.
type AuditResponse struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	FromCache   bool                      `json:"from_cache"`
	Summary     AuditSummary              `json:"summary"`
	Conflicts   []models.EnhancedConflict `json:"conflicts"`
}

// AutoResolveRequest bounds an auto-resolution run over the latest audit.
type AutoResolveRequest struct {
	AcademicYear           string `json:"academic_year" validate:"required"`
	Semester               string `json:"semester" validate:"required"`
	MaxRelaxation          *int   `json:"max_relaxation,omitempty" validate:"omitempty,min=0"`
	PreservePreferences    bool   `json:"preserve_preferences"`
	AllowPartialResolution bool   `json:"allow_partial_resolution"`
}

// DraftItem asks the round-robin placer to schedule a course/faculty pair
// a number of times per week.
type DraftItem struct {
	CourseID     string `json:"course_id" validate:"required"`
	FacultyID    string `json:"faculty_id" validate:"required"`
	RoomID       string `json:"room_id" validate:"required"`
	DepartmentID string `json:"department_id,omitempty"`
	YearLevel    int    `json:"year_level" validate:"required,min=1"`
	WeeklyCount  int    `json:"weekly_count" validate:"required,min=1"`
}

// DraftRequest describes a round-robin draft placement. This is a simple
// rotation over free day/time positions, not an optimizer.
type DraftRequest struct {
	AcademicYear    string      `json:"academic_year" validate:"required"`
	Semester        string      `json:"semester" validate:"required"`
	Days            []int       `json:"days" validate:"required,min=1,dive,min=1,max=7"`
	StartTimes      []string    `json:"start_times" validate:"required,min=1"`
	DurationMinutes int         `json:"duration_minutes" validate:"required,min=30,max=240"`
	Items           []DraftItem `json:"items" validate:"required,min=1,dive"`
}

// DraftResponse returns placed slots and any demand that found no free position.
type DraftResponse struct {
	Slots    []models.TimeSlot `json:"slots"`
	Unplaced []DraftItem       `json:"unplaced,omitempty"`
}
