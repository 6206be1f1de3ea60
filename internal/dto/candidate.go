package dto

import (
	"fmt"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// OperationMode selects the scheduling semantics of a candidate submission.
type OperationMode string

const (
	OperationAdd   OperationMode = "add"
	OperationJoint OperationMode = "joint"
	OperationSplit OperationMode = "split"
)

// CandidateBase carries the fields shared by every operation mode.
type CandidateBase struct {
	DayOfWeek     int               `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime     string            `json:"start_time" validate:"required"`
	EndTime       string            `json:"end_time" validate:"required"`
	AcademicYear  string            `json:"academic_year" validate:"required"`
	Semester      string            `json:"semester" validate:"required"`
	YearLevel     int               `json:"year_level" validate:"required,min=1"`
	DepartmentID  string            `json:"department_id,omitempty"`
	LessonKind    models.LessonKind `json:"lesson_kind,omitempty"`
	GroupID       string            `json:"group_id,omitempty"`
	ExcludeSlotID string            `json:"exclude_slot_id,omitempty"`
}

// Candidate is the tagged union over the three operation modes. Each mode's
// required fields are carried by its own concrete type rather than checked
// ad hoc on a shared shape.
type Candidate interface {
	Base() CandidateBase
	Mode() OperationMode
}

// AddCandidate proposes a single ordinary slot.
type AddCandidate struct {
	CandidateBase
	CourseID  string `json:"course_id" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
	RoomID    string `json:"room_id" validate:"required"`
}

func (c AddCandidate) Base() CandidateBase { return c.CandidateBase }
func (c AddCandidate) Mode() OperationMode { return OperationAdd }

// JointCandidate proposes co-scheduling two or more courses under one
// faculty member and room.
type JointCandidate struct {
	CandidateBase
	CourseIDs []string `json:"course_ids" validate:"required,min=2,dive,required"`
	FacultyID string   `json:"faculty_id" validate:"required"`
	RoomID    string   `json:"room_id" validate:"required"`
}

func (c JointCandidate) Base() CandidateBase { return c.CandidateBase }
func (c JointCandidate) Mode() OperationMode { return OperationJoint }

// SplitGroup describes one sub-group of a split class. Empty overrides fall
// back to the parent candidate's faculty, room and time window.
type SplitGroup struct {
	Name        string `json:"name" validate:"required"`
	FacultyID   string `json:"faculty_id,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	MaxStudents int    `json:"max_students,omitempty"`
}

// SplitCandidate divides one course's cohort into sub-groups.
type SplitCandidate struct {
	CandidateBase
	CourseID  string       `json:"course_id" validate:"required"`
	FacultyID string       `json:"faculty_id,omitempty"`
	RoomID    string       `json:"room_id,omitempty"`
	Groups    []SplitGroup `json:"split_groups" validate:"required,min=2,dive"`
}

func (c SplitCandidate) Base() CandidateBase { return c.CandidateBase }
func (c SplitCandidate) Mode() OperationMode { return OperationSplit }

// ValidateSlotRequest is the wire shape for candidate validation. The
// operation discriminator selects which union member Decode produces.
type ValidateSlotRequest struct {
	Operation    OperationMode `json:"operation" validate:"required,oneof=add joint split"`
	DayOfWeek    int           `json:"day_of_week"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	AcademicYear string        `json:"academic_year"`
	Semester     string        `json:"semester"`
	YearLevel    int           `json:"year_level"`
	DepartmentID string        `json:"department_id,omitempty"`

	LessonKind    models.LessonKind `json:"lesson_kind,omitempty"`
	GroupID       string            `json:"group_id,omitempty"`
	ExcludeSlotID string            `json:"exclude_slot_id,omitempty"`

	CourseID  string `json:"course_id,omitempty"`
	FacultyID string `json:"faculty_id,omitempty"`
	RoomID    string `json:"room_id,omitempty"`

	JointCourses []string     `json:"joint_courses,omitempty"`
	SplitGroups  []SplitGroup `json:"split_groups,omitempty"`
}

// Decode converts the wire shape into the typed candidate union.
func (r ValidateSlotRequest) Decode() (Candidate, error) {
	base := CandidateBase{
		DayOfWeek:     r.DayOfWeek,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		AcademicYear:  r.AcademicYear,
		Semester:      r.Semester,
		YearLevel:     r.YearLevel,
		DepartmentID:  r.DepartmentID,
		LessonKind:    r.LessonKind,
		GroupID:       r.GroupID,
		ExcludeSlotID: r.ExcludeSlotID,
	}

	switch r.Operation {
	case OperationAdd:
		return AddCandidate{CandidateBase: base, CourseID: r.CourseID, FacultyID: r.FacultyID, RoomID: r.RoomID}, nil
	case OperationJoint:
		return JointCandidate{CandidateBase: base, CourseIDs: r.JointCourses, FacultyID: r.FacultyID, RoomID: r.RoomID}, nil
	case OperationSplit:
		return SplitCandidate{CandidateBase: base, CourseID: r.CourseID, FacultyID: r.FacultyID, RoomID: r.RoomID, Groups: r.SplitGroups}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", r.Operation)
	}
}
