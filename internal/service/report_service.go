package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/export"
)

// ReportFormat selects the rendering of a conflict report.
type ReportFormat string

const (
	ReportCSV ReportFormat = "csv"
	ReportPDF ReportFormat = "pdf"
)

type auditor interface {
	Audit(ctx context.Context, query dto.AuditQuery) (dto.AuditResponse, error)
}

// Report is a rendered conflict report ready to stream to the client.
type Report struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService renders schedule audits as downloadable documents.
type ReportService struct {
	audits auditor
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(audits auditor, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		audits: audits,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Build runs an audit and renders the findings in the requested format.
func (s *ReportService) Build(ctx context.Context, query dto.AuditQuery, format ReportFormat) (Report, error) {
	audit, err := s.audits.Audit(ctx, query)
	if err != nil {
		return Report{}, err
	}

	dataset := conflictDataset(audit.Conflicts)
	stamp := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("conflict-report-%s-%s-%s", query.AcademicYear, query.Semester, stamp)

	switch format {
	case ReportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return Report{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return Report{Content: content, ContentType: "text/csv", Filename: name + ".csv"}, nil
	case ReportPDF:
		title := fmt.Sprintf("Schedule conflicts %s %s", query.AcademicYear, query.Semester)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return Report{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return Report{Content: content, ContentType: "application/pdf", Filename: name + ".pdf"}, nil
	default:
		return Report{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

func conflictDataset(conflicts []models.EnhancedConflict) export.Dataset {
	headers := []string{"Severity", "Type", "Score", "Description", "Affected Slots", "Auto Resolvable", "Suggestions"}
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		auto := "no"
		if c.AutoResolvable {
			auto = "yes"
		}
		var hints []string
		for _, s := range c.Suggestions {
			hints = append(hints, s.Description)
		}
		rows = append(rows, []string{
			string(c.Severity),
			string(c.Type),
			fmt.Sprintf("%.0f", c.Score),
			c.Description,
			strings.Join(c.AffectedSlots, " "),
			auto,
			strings.Join(hints, "; "),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
