package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

const timeSlotColumns = "id, department_id, course_id, faculty_id, room_id, year_level, day_of_week, start_time, end_time, academic_year, semester, lesson_kind, group_type, group_id, created_at, updated_at"

// TimeSlotRepository provides persistence for schedule slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns slots with optional filtering and pagination.
func (r *TimeSlotRepository) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	base := "FROM time_slots WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.DayOfWeek > 0 {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.YearLevel > 0 {
		conditions = append(conditions, fmt.Sprintf("year_level = $%d", len(args)+1))
		args = append(args, filter.YearLevel)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week": true,
		"start_time":  true,
		"room_id":     true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", timeSlotColumns, base, sortBy, order, size, offset)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list time slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count time slots: %w", err)
	}

	return slots, total, nil
}

// ListByPeriod returns every slot of one academic period without paging.
// The conflict engine audits whole rosters, so this skips LIMIT entirely.
func (r *TimeSlotRepository) ListByPeriod(ctx context.Context, academicYear, semester string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE academic_year = $1 AND semester = $2 ORDER BY day_of_week ASC, start_time ASC, id ASC", timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list time slots by period: %w", err)
	}
	return slots, nil
}

// FindByID loads a slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE id = $1", timeSlotColumns)
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByGroup returns the slots sharing a joint or split group.
func (r *TimeSlotRepository) ListByGroup(ctx context.Context, groupID string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE group_id = $1 ORDER BY start_time ASC, id ASC", timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, groupID); err != nil {
		return nil, fmt.Errorf("list time slots by group: %w", err)
	}
	return slots, nil
}

// Create stores a new slot record.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, department_id, course_id, faculty_id, room_id, year_level, day_of_week, start_time, end_time, academic_year, semester, lesson_kind, group_type, group_id, created_at, updated_at) VALUES (:id, :department_id, :course_id, :faculty_id, :room_id, :year_level, :day_of_week, :start_time, :end_time, :academic_year, :semester, :lesson_kind, :group_type, :group_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// BulkCreate inserts many slots within a transaction. Used for joint and
// split groups where the slot set must land atomically.
func (r *TimeSlotRepository) BulkCreate(ctx context.Context, slots []models.TimeSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create time slots: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.bulkInsertSlots(ctx, tx, slots); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create time slots: %w", err)
	}
	return nil
}

func (r *TimeSlotRepository) bulkInsertSlots(ctx context.Context, exec sqlx.ExtContext, slots []models.TimeSlot) error {
	now := time.Now().UTC()
	for i := range slots {
		payload := slots[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO time_slots (id, department_id, course_id, faculty_id, room_id, year_level, day_of_week, start_time, end_time, academic_year, semester, lesson_kind, group_type, group_id, created_at, updated_at) VALUES (:id, :department_id, :course_id, :faculty_id, :room_id, :year_level, :day_of_week, :start_time, :end_time, :academic_year, :semester, :lesson_kind, :group_type, :group_id, :created_at, :updated_at)`, &payload); err != nil {
			return fmt.Errorf("bulk insert time slot: %w", err)
		}
		slots[i] = payload
	}
	return nil
}

// Update modifies a slot record.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET department_id = :department_id, course_id = :course_id, faculty_id = :faculty_id, room_id = :room_id, year_level = :year_level, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, academic_year = :academic_year, semester = :semester, lesson_kind = :lesson_kind, group_type = :group_type, group_id = :group_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Delete removes a slot by id.
func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}

// DeleteByGroup removes every slot of a joint or split group.
func (r *TimeSlotRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("delete time slots by group: %w", err)
	}
	return nil
}
