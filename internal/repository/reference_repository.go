package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// ReferenceRepository loads the lookup tables the conflict engine reads:
// departments, courses, faculty, rooms and student enrollments.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListDepartments returns all departments ordered by code.
func (r *ReferenceRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, code, name, created_at, updated_at FROM departments ORDER BY code ASC`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// ListCourses returns courses, optionally filtered by department.
func (r *ReferenceRepository) ListCourses(ctx context.Context, departmentID string) ([]models.Course, error) {
	var courses []models.Course
	if departmentID != "" {
		const query = `SELECT id, code, name, department_id, year_level, requires_lab, student_count, created_at, updated_at FROM courses WHERE department_id = $1 ORDER BY code ASC`
		if err := r.db.SelectContext(ctx, &courses, query, departmentID); err != nil {
			return nil, fmt.Errorf("list courses by department: %w", err)
		}
		return courses, nil
	}
	const query = `SELECT id, code, name, department_id, year_level, requires_lab, student_count, created_at, updated_at FROM courses ORDER BY code ASC`
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListFaculty returns active faculty members.
func (r *ReferenceRepository) ListFaculty(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, full_name, email, department_id, max_daily_load, active, created_at, updated_at FROM faculty WHERE active = true ORDER BY full_name ASC`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

// ListRooms returns all bookable rooms.
func (r *ReferenceRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, building, capacity, is_lab, created_at, updated_at FROM rooms ORDER BY building ASC, name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListStudents returns students with their enrolled course ids.
func (r *ReferenceRepository) ListStudents(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, full_name, department_id, year_level, enrolled_courses, created_at, updated_at FROM students ORDER BY id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// LoadReferenceSet assembles the full lookup bundle for one engine run.
func (r *ReferenceRepository) LoadReferenceSet(ctx context.Context) (models.ReferenceSet, error) {
	faculty, err := r.ListFaculty(ctx)
	if err != nil {
		return models.ReferenceSet{}, err
	}
	rooms, err := r.ListRooms(ctx)
	if err != nil {
		return models.ReferenceSet{}, err
	}
	courses, err := r.ListCourses(ctx, "")
	if err != nil {
		return models.ReferenceSet{}, err
	}
	students, err := r.ListStudents(ctx)
	if err != nil {
		return models.ReferenceSet{}, err
	}
	return models.NewReferenceSet(faculty, rooms, courses, students), nil
}
