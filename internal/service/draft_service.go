package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

// DraftService places a batch of course demands into free positions by
// rotating over the requested days and start times. It is a seeding tool
// for an empty period, not an optimizer: every placement is checked with
// the candidate validator, and demands that find no clear position are
// returned unplaced.
type DraftService struct {
	slots     timeSlotRepository
	refs      referenceLoader
	checker   *CandidateValidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDraftService constructs a DraftService.
func NewDraftService(slots timeSlotRepository, refs referenceLoader, checker *CandidateValidator, validate *validator.Validate, logger *zap.Logger) *DraftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if checker == nil {
		checker = NewCandidateValidator(defaultEngineConfig(), logger)
	}
	return &DraftService{slots: slots, refs: refs, checker: checker, validator: validate, logger: logger}
}

// Place computes a draft without persisting anything. Placement order is
// deterministic: items in request order, positions rotating day-major over
// the requested days and start times.
func (s *DraftService) Place(ctx context.Context, req dto.DraftRequest) (dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DraftResponse{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload")
	}
	for _, start := range req.StartTimes {
		if !validClock(start) {
			return dto.DraftResponse{}, appErrors.Clone(appErrors.ErrValidation, "start_times must be HH:MM clock values")
		}
	}

	existing, err := s.slots.ListByPeriod(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		return dto.DraftResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	refs := models.ReferenceSet{}
	if s.refs != nil {
		refs, err = s.refs.LoadReferenceSet(ctx)
		if err != nil {
			return dto.DraftResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
		}
	}

	type position struct {
		day   int
		start string
	}
	positions := make([]position, 0, len(req.Days)*len(req.StartTimes))
	for _, day := range req.Days {
		for _, start := range req.StartTimes {
			positions = append(positions, position{day: day, start: start})
		}
	}

	working := cloneSlots(existing)
	var placed []models.TimeSlot
	var unplaced []dto.DraftItem
	cursor := 0

	for _, item := range req.Items {
		remaining := item.WeeklyCount
		usedDays := map[int]bool{}

		for attempt := 0; remaining > 0 && attempt < len(positions); attempt++ {
			pos := positions[(cursor+attempt)%len(positions)]
			// Spread a course's meetings across distinct days when possible.
			if usedDays[pos.day] && item.WeeklyCount <= len(req.Days) {
				continue
			}
			startMin, _ := parseClock(pos.start)
			endTime := minutesToClock(startMin + req.DurationMinutes)

			yearLevel := item.YearLevel
			if course, ok := refs.Courses[item.CourseID]; ok && course.YearLevel > 0 {
				yearLevel = course.YearLevel
			}

			candidate := dto.AddCandidate{
				CandidateBase: dto.CandidateBase{
					DayOfWeek:    pos.day,
					StartTime:    pos.start,
					EndTime:      endTime,
					AcademicYear: req.AcademicYear,
					Semester:     req.Semester,
					YearLevel:    yearLevel,
					DepartmentID: item.DepartmentID,
				},
				CourseID:  item.CourseID,
				FacultyID: item.FacultyID,
				RoomID:    item.RoomID,
			}

			result := s.checker.Detect(candidate, working, refs)
			if !result.CanProceed {
				continue
			}

			slot := models.TimeSlot{
				DepartmentID: item.DepartmentID,
				CourseID:     item.CourseID,
				FacultyID:    item.FacultyID,
				RoomID:       item.RoomID,
				YearLevel:    yearLevel,
				DayOfWeek:    pos.day,
				StartTime:    pos.start,
				EndTime:      endTime,
				AcademicYear: req.AcademicYear,
				Semester:     req.Semester,
				LessonKind:   models.LessonLecture,
				GroupType:    models.GroupRegular,
			}
			working = append(working, slot)
			placed = append(placed, slot)
			usedDays[pos.day] = true
			remaining--
			cursor = (cursor + attempt + 1) % len(positions)
		}

		if remaining > 0 {
			leftover := item
			leftover.WeeklyCount = remaining
			unplaced = append(unplaced, leftover)
		}
	}

	s.logger.Info("draft placed",
		zap.Int("requested", len(req.Items)),
		zap.Int("placed", len(placed)),
		zap.Int("unplaced", len(unplaced)),
	)
	return dto.DraftResponse{Slots: placed, Unplaced: unplaced}, nil
}
