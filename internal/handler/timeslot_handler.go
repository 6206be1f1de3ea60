package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type timeSlotManager interface {
	List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error)
	Get(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, req dto.CreateTimeSlotRequest) (*models.TimeSlot, error)
	Update(ctx context.Context, id string, req dto.UpdateTimeSlotRequest) (*models.TimeSlot, error)
	Delete(ctx context.Context, id string) error
	CreateJoint(ctx context.Context, req dto.CreateJointSessionRequest) ([]models.TimeSlot, error)
	CreateSplit(ctx context.Context, req dto.CreateSplitClassRequest) ([]models.TimeSlot, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

// TimeSlotHandler exposes slot CRUD plus joint and split group creation.
type TimeSlotHandler struct {
	service timeSlotManager
}

// NewTimeSlotHandler constructs the handler.
func NewTimeSlotHandler(svc *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{service: svc}
}

// List godoc
// @Summary List time slots
// @Tags TimeSlots
// @Produce json
// @Param academic_year query string false "Academic year"
// @Param semester query string false "Semester"
// @Param faculty_id query string false "Faculty ID"
// @Param room_id query string false "Room ID"
// @Param day_of_week query int false "Day of week (1-7)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timeslots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	filter := models.TimeSlotFilter{
		AcademicYear: c.Query("academic_year"),
		Semester:     c.Query("semester"),
		DepartmentID: c.Query("department_id"),
		CourseID:     c.Query("course_id"),
		FacultyID:    c.Query("faculty_id"),
		RoomID:       c.Query("room_id"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}
	filter.DayOfWeek, _ = strconv.Atoi(c.Query("day_of_week"))
	filter.YearLevel, _ = strconv.Atoi(c.Query("year_level"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	slots, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one time slot
// @Tags TimeSlots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /timeslots/{id} [get]
func (h *TimeSlotHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create a time slot
// @Description Rejected with 409 when the placement produces error-severity conflicts.
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimeSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /timeslots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req dto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update a time slot
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.UpdateTimeSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /timeslots/{id} [put]
func (h *TimeSlotHandler) Update(c *gin.Context) {
	var req dto.UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete a time slot
// @Tags TimeSlots
// @Param id path string true "Slot ID"
// @Success 204
// @Router /timeslots/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateJoint godoc
// @Summary Create a joint session
// @Description Creates one slot per course, all sharing a joint group id.
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param payload body dto.CreateJointSessionRequest true "Joint session payload"
// @Success 201 {object} response.Envelope
// @Router /timeslots/joint [post]
func (h *TimeSlotHandler) CreateJoint(c *gin.Context) {
	var req dto.CreateJointSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid joint session payload"))
		return
	}
	slots, err := h.service.CreateJoint(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slots)
}

// CreateSplit godoc
// @Summary Create a split class
// @Description Creates one slot per sub-group, all sharing a split group id.
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param payload body dto.CreateSplitClassRequest true "Split class payload"
// @Success 201 {object} response.Envelope
// @Router /timeslots/split [post]
func (h *TimeSlotHandler) CreateSplit(c *gin.Context) {
	var req dto.CreateSplitClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid split class payload"))
		return
	}
	slots, err := h.service.CreateSplit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slots)
}

// DeleteGroup godoc
// @Summary Delete a joint or split group
// @Tags TimeSlots
// @Param groupId path string true "Group ID"
// @Success 204
// @Router /timeslots/groups/{groupId} [delete]
func (h *TimeSlotHandler) DeleteGroup(c *gin.Context) {
	if err := h.service.DeleteGroup(c.Request.Context(), c.Param("groupId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
