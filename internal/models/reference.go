package models

import (
	"time"

	"github.com/lib/pq"
)

// Department groups programs, courses and faculty under one academic unit.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Program is a degree track offered by a department.
type Program struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Name         string    `db:"name" json:"name"`
	YearLevels   int       `db:"year_levels" json:"year_levels"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Course is a teachable unit owned by a department.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	YearLevel    int       `db:"year_level" json:"year_level"`
	RequiresLab  bool      `db:"requires_lab" json:"requires_lab"`
	StudentCount int       `db:"student_count" json:"student_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Faculty represents an instructor record.
type Faculty struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	MaxDailyLoad int       `db:"max_daily_load" json:"max_daily_load"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Room is a bookable teaching space.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Building  string    `db:"building" json:"building"`
	Capacity  int       `db:"capacity" json:"capacity"`
	IsLab     bool      `db:"is_lab" json:"is_lab"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Student is a learner with a set of enrolled course ids, used to derive
// cohort-availability conflicts.
type Student struct {
	ID              string         `db:"id" json:"id"`
	FullName        string         `db:"full_name" json:"full_name"`
	DepartmentID    string         `db:"department_id" json:"department_id"`
	YearLevel       int            `db:"year_level" json:"year_level"`
	EnrolledCourses pq.StringArray `db:"enrolled_courses" json:"enrolled_courses"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ReferenceSet bundles read-only lookup tables for one engine invocation.
// The engine never mutates it and never caches it across calls.
type ReferenceSet struct {
	Faculty  map[string]Faculty
	Rooms    map[string]Room
	Courses  map[string]Course
	Students []Student
}

// NewReferenceSet indexes reference slices by identifier.
func NewReferenceSet(faculty []Faculty, rooms []Room, courses []Course, students []Student) ReferenceSet {
	refs := ReferenceSet{
		Faculty:  make(map[string]Faculty, len(faculty)),
		Rooms:    make(map[string]Room, len(rooms)),
		Courses:  make(map[string]Course, len(courses)),
		Students: students,
	}
	for _, f := range faculty {
		refs.Faculty[f.ID] = f
	}
	for _, r := range rooms {
		refs.Rooms[r.ID] = r
	}
	for _, c := range courses {
		refs.Courses[c.ID] = c
	}
	return refs
}
