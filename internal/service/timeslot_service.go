package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type timeSlotRepository interface {
	List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error)
	ListByPeriod(ctx context.Context, academicYear, semester string) ([]models.TimeSlot, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	BulkCreate(ctx context.Context, slots []models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
	DeleteByGroup(ctx context.Context, groupID string) error
}

type referenceLoader interface {
	LoadReferenceSet(ctx context.Context) (models.ReferenceSet, error)
}

// auditNotifier lets the slot service tell the audit layer a period changed.
type auditNotifier interface {
	ScheduleChanged(academicYear, semester string)
}

// TimeSlotService owns slot CRUD. Every mutation is guarded by the
// candidate validator: writes that would produce error-severity conflicts
// are rejected before touching storage.
type TimeSlotService struct {
	repo      timeSlotRepository
	refs      referenceLoader
	checker   *CandidateValidator
	notifier  auditNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs a TimeSlotService.
func NewTimeSlotService(repo timeSlotRepository, refs referenceLoader, checker *CandidateValidator, notifier auditNotifier, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if checker == nil {
		checker = NewCandidateValidator(defaultEngineConfig(), logger)
	}
	return &TimeSlotService{repo: repo, refs: refs, checker: checker, notifier: notifier, validator: validate, logger: logger}
}

// List returns slots matching the filter with paging metadata.
func (s *TimeSlotService) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, total, nil
}

// Get loads one slot by id.
func (s *TimeSlotService) Get(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	return slot, nil
}

// Validate runs the conflict checker for a candidate without persisting
// anything. This is the dry-run endpoint behind the scheduling UI.
func (s *TimeSlotService) Validate(ctx context.Context, req dto.ValidateSlotRequest) (models.ConflictResult, error) {
	candidate, err := req.Decode()
	if err != nil {
		return models.ConflictResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}
	existing, refs, err := s.loadContext(ctx, candidate.Base().AcademicYear, candidate.Base().Semester)
	if err != nil {
		return models.ConflictResult{}, err
	}
	return s.checker.Detect(candidate, existing, refs), nil
}

// Create validates and stores one ordinary slot. Warnings do not block;
// error-severity conflicts do.
func (s *TimeSlotService) Create(ctx context.Context, req dto.CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	candidate := dto.AddCandidate{
		CandidateBase: dto.CandidateBase{
			DayOfWeek:    req.DayOfWeek,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
			YearLevel:    req.YearLevel,
			DepartmentID: req.DepartmentID,
			LessonKind:   req.LessonKind,
		},
		CourseID:  req.CourseID,
		FacultyID: req.FacultyID,
		RoomID:    req.RoomID,
	}
	if err := s.guard(ctx, candidate); err != nil {
		return nil, err
	}

	slot := models.TimeSlot{
		DepartmentID: req.DepartmentID,
		CourseID:     req.CourseID,
		FacultyID:    req.FacultyID,
		RoomID:       req.RoomID,
		YearLevel:    req.YearLevel,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		LessonKind:   req.LessonKind,
		GroupType:    models.GroupRegular,
	}
	if err := s.repo.Create(ctx, &slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	s.changed(slot.AcademicYear, slot.Semester)
	return &slot, nil
}

// Update validates and applies changes to an existing slot. The slot being
// edited is excluded from the conflict scan.
func (s *TimeSlotService) Update(ctx context.Context, id string, req dto.UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate := dto.AddCandidate{
		CandidateBase: dto.CandidateBase{
			DayOfWeek:     req.DayOfWeek,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			AcademicYear:  req.AcademicYear,
			Semester:      req.Semester,
			YearLevel:     req.YearLevel,
			DepartmentID:  req.DepartmentID,
			LessonKind:    req.LessonKind,
			GroupID:       existing.GroupID,
			ExcludeSlotID: id,
		},
		CourseID:  req.CourseID,
		FacultyID: req.FacultyID,
		RoomID:    req.RoomID,
	}
	if err := s.guard(ctx, candidate); err != nil {
		return nil, err
	}

	existing.DepartmentID = req.DepartmentID
	existing.CourseID = req.CourseID
	existing.FacultyID = req.FacultyID
	existing.RoomID = req.RoomID
	existing.YearLevel = req.YearLevel
	existing.DayOfWeek = req.DayOfWeek
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.AcademicYear = req.AcademicYear
	existing.Semester = req.Semester
	existing.LessonKind = req.LessonKind

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	s.changed(existing.AcademicYear, existing.Semester)
	return existing, nil
}

// Delete removes one slot by id.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	s.changed(existing.AcademicYear, existing.Semester)
	return nil
}

// CreateJoint validates and stores a joint session: one slot per course,
// all sharing a fresh joint group id.
func (s *TimeSlotService) CreateJoint(ctx context.Context, req dto.CreateJointSessionRequest) ([]models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid joint session payload")
	}

	groupID := uuid.NewString()
	candidate := dto.JointCandidate{
		CandidateBase: dto.CandidateBase{
			DayOfWeek:    req.DayOfWeek,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
			YearLevel:    req.YearLevel,
			DepartmentID: req.DepartmentID,
			LessonKind:   req.LessonKind,
			GroupID:      groupID,
		},
		CourseIDs: req.CourseIDs,
		FacultyID: req.FacultyID,
		RoomID:    req.RoomID,
	}
	if err := s.guard(ctx, candidate); err != nil {
		return nil, err
	}

	slots := make([]models.TimeSlot, 0, len(req.CourseIDs))
	for _, courseID := range req.CourseIDs {
		slots = append(slots, models.TimeSlot{
			DepartmentID: req.DepartmentID,
			CourseID:     courseID,
			FacultyID:    req.FacultyID,
			RoomID:       req.RoomID,
			YearLevel:    req.YearLevel,
			DayOfWeek:    req.DayOfWeek,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
			LessonKind:   req.LessonKind,
			GroupType:    models.GroupJoint,
			GroupID:      groupID,
		})
	}
	if err := s.repo.BulkCreate(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create joint session")
	}
	s.changed(req.AcademicYear, req.Semester)
	s.logger.Info("joint session created", zap.String("group_id", groupID), zap.Int("courses", len(slots)))
	return slots, nil
}

// CreateSplit validates and stores a split class: one slot per sub-group,
// all sharing a fresh split group id.
func (s *TimeSlotService) CreateSplit(ctx context.Context, req dto.CreateSplitClassRequest) ([]models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid split class payload")
	}

	groupID := uuid.NewString()
	candidate := dto.SplitCandidate{
		CandidateBase: dto.CandidateBase{
			DayOfWeek:    req.DayOfWeek,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
			YearLevel:    req.YearLevel,
			DepartmentID: req.DepartmentID,
			LessonKind:   req.LessonKind,
			GroupID:      groupID,
		},
		CourseID:  req.CourseID,
		FacultyID: req.FacultyID,
		RoomID:    req.RoomID,
		Groups:    req.Groups,
	}
	if err := s.guard(ctx, candidate); err != nil {
		return nil, err
	}

	slots := make([]models.TimeSlot, 0, len(req.Groups))
	for _, group := range req.Groups {
		slots = append(slots, models.TimeSlot{
			DepartmentID: req.DepartmentID,
			CourseID:     req.CourseID,
			FacultyID:    coalesce(group.FacultyID, req.FacultyID),
			RoomID:       coalesce(group.RoomID, req.RoomID),
			YearLevel:    req.YearLevel,
			DayOfWeek:    req.DayOfWeek,
			StartTime:    coalesce(group.StartTime, req.StartTime),
			EndTime:      coalesce(group.EndTime, req.EndTime),
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
			LessonKind:   req.LessonKind,
			GroupType:    models.GroupSplit,
			GroupID:      groupID,
		})
	}
	if err := s.repo.BulkCreate(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create split class")
	}
	s.changed(req.AcademicYear, req.Semester)
	s.logger.Info("split class created", zap.String("group_id", groupID), zap.Int("groups", len(slots)))
	return slots, nil
}

// DeleteGroup removes every slot of a joint or split group.
func (s *TimeSlotService) DeleteGroup(ctx context.Context, groupID string) error {
	slots, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if len(slots) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	if err := s.repo.DeleteByGroup(ctx, groupID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}
	s.changed(slots[0].AcademicYear, slots[0].Semester)
	return nil
}

// guard runs the conflict checker and turns blocking findings into a
// typed conflict error carrying the findings as the message.
func (s *TimeSlotService) guard(ctx context.Context, candidate dto.Candidate) error {
	base := candidate.Base()
	existing, refs, err := s.loadContext(ctx, base.AcademicYear, base.Semester)
	if err != nil {
		return err
	}
	result := s.checker.Detect(candidate, existing, refs)
	if result.CanProceed {
		return nil
	}
	first := ""
	for _, c := range result.Conflicts {
		if c.Severity == models.SeverityError {
			first = c.Message
			break
		}
	}
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("scheduling conflict: %s", first))
}

func (s *TimeSlotService) loadContext(ctx context.Context, academicYear, semester string) ([]models.TimeSlot, models.ReferenceSet, error) {
	existing, err := s.repo.ListByPeriod(ctx, academicYear, semester)
	if err != nil {
		return nil, models.ReferenceSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	refs := models.ReferenceSet{}
	if s.refs != nil {
		refs, err = s.refs.LoadReferenceSet(ctx)
		if err != nil {
			return nil, models.ReferenceSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
		}
	}
	return existing, refs, nil
}

func (s *TimeSlotService) changed(academicYear, semester string) {
	if s.notifier != nil {
		s.notifier.ScheduleChanged(academicYear, semester)
	}
}
