package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type reportBuilder interface {
	Build(ctx context.Context, query dto.AuditQuery, format service.ReportFormat) (service.Report, error)
}

// ReportHandler streams conflict reports as downloadable documents.
type ReportHandler struct {
	service reportBuilder
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ConflictReport godoc
// @Summary Download a conflict report
// @Description Renders the audit findings for one period as CSV or PDF.
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param academic_year query string true "Academic year"
// @Param semester query string true "Semester"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} binary
// @Router /schedule/conflicts/report [get]
func (h *ReportHandler) ConflictReport(c *gin.Context) {
	var query dto.AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report query"))
		return
	}
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))

	report, err := h.service.Build(c.Request.Context(), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
