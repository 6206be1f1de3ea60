package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type slotValidator interface {
	Validate(ctx context.Context, req dto.ValidateSlotRequest) (models.ConflictResult, error)
}

type scheduleAuditor interface {
	Audit(ctx context.Context, query dto.AuditQuery) (dto.AuditResponse, error)
	Resolve(ctx context.Context, req dto.AutoResolveRequest) (models.ResolutionResult, error)
}

type draftPlacer interface {
	Place(ctx context.Context, req dto.DraftRequest) (dto.DraftResponse, error)
}

// ScheduleHandler exposes the conflict engine: candidate validation,
// whole-schedule audits, auto-resolution and draft placement.
type ScheduleHandler struct {
	slots   slotValidator
	audits  scheduleAuditor
	drafts  draftPlacer
	metrics *service.MetricsService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(slots *service.TimeSlotService, audits *service.AuditService, drafts *service.DraftService, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{slots: slots, audits: audits, drafts: drafts, metrics: metrics}
}

// Validate godoc
// @Summary Validate a candidate slot without persisting it
// @Description Dry-run conflict check for add, joint and split operations. Conflicts come back as data; only malformed payloads fail.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ValidateSlotRequest true "Candidate payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.ValidateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}
	result, err := h.slots.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordValidation(string(req.Operation), result.CanProceed)
	response.JSON(c, http.StatusOK, result, nil)
}

// Conflicts godoc
// @Summary Audit a period's schedule for conflicts
// @Description Returns the ranked conflict list with resolution suggestions. Served from cache unless refresh=true.
// @Tags Schedule
// @Produce json
// @Param academic_year query string true "Academic year"
// @Param semester query string true "Semester"
// @Param refresh query bool false "Bypass the audit cache"
// @Success 200 {object} response.Envelope
// @Router /schedule/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	var query dto.AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid audit query"))
		return
	}
	result, err := h.audits.Audit(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"from_cache": result.FromCache})
}

// Resolve godoc
// @Summary Auto-resolve schedule conflicts
// @Description Applies the best resolution suggestion per conflict to a working copy of the roster. Nothing is persisted; the response carries the proposed roster.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.AutoResolveRequest true "Resolution options"
// @Success 200 {object} response.Envelope
// @Router /schedule/conflicts/resolve [post]
func (h *ScheduleHandler) Resolve(c *gin.Context) {
	var req dto.AutoResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolve payload"))
		return
	}
	if req.AcademicYear == "" || req.Semester == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year and semester are required"))
		return
	}
	result, err := h.audits.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Draft godoc
// @Summary Place a draft schedule by rotation
// @Description Rotates course demands over the requested days and start times, validating every placement. Returns placed slots and unplaced demand without persisting.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.DraftRequest true "Draft demands"
// @Success 200 {object} response.Envelope
// @Router /schedule/draft [post]
func (h *ScheduleHandler) Draft(c *gin.Context) {
	var req dto.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}
	result, err := h.drafts.Place(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
