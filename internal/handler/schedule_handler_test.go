package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type slotValidatorStub struct {
	result models.ConflictResult
	err    error
	last   dto.ValidateSlotRequest
}

func (s *slotValidatorStub) Validate(_ context.Context, req dto.ValidateSlotRequest) (models.ConflictResult, error) {
	s.last = req
	return s.result, s.err
}

type scheduleAuditorStub struct {
	audit      dto.AuditResponse
	auditErr   error
	resolution models.ResolutionResult
	resolveErr error
	lastQuery  dto.AuditQuery
}

func (s *scheduleAuditorStub) Audit(_ context.Context, query dto.AuditQuery) (dto.AuditResponse, error) {
	s.lastQuery = query
	return s.audit, s.auditErr
}

func (s *scheduleAuditorStub) Resolve(_ context.Context, _ dto.AutoResolveRequest) (models.ResolutionResult, error) {
	return s.resolution, s.resolveErr
}

type draftPlacerStub struct {
	response dto.DraftResponse
	err      error
}

func (s *draftPlacerStub) Place(_ context.Context, _ dto.DraftRequest) (dto.DraftResponse, error) {
	return s.response, s.err
}

func newScheduleRouter(h *ScheduleHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/schedule/validate", h.Validate)
	r.GET("/schedule/conflicts", h.Conflicts)
	r.POST("/schedule/conflicts/resolve", h.Resolve)
	r.POST("/schedule/draft", h.Draft)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestScheduleHandlerValidate(t *testing.T) {
	validator := &slotValidatorStub{result: models.ConflictResult{
		HasConflicts: true,
		CanProceed:   false,
		Conflicts: []models.Conflict{{
			Type:     models.ConflictFacultyOverlap,
			Severity: models.SeverityError,
			Message:  "faculty is already teaching another class from 09:00 to 10:30",
		}},
	}}
	h := &ScheduleHandler{slots: validator}
	router := newScheduleRouter(h)

	body := `{
		"operation": "add",
		"day_of_week": 2,
		"start_time": "09:00",
		"end_time": "10:30",
		"academic_year": "2026",
		"semester": "1",
		"year_level": 2,
		"course_id": "cs-201",
		"faculty_id": "fac-1",
		"room_id": "room-1"
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedule/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "conflicts are data, not HTTP errors")
	assert.Equal(t, dto.OperationAdd, validator.last.Operation)

	envelope := decodeEnvelope(t, w)
	require.Nil(t, envelope.Error)
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result models.ConflictResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.HasConflicts)
	assert.False(t, result.CanProceed)
}

func TestScheduleHandlerValidateRejectsMalformedJSON(t *testing.T) {
	h := &ScheduleHandler{slots: &slotValidatorStub{}}
	router := newScheduleRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedule/validate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestScheduleHandlerConflicts(t *testing.T) {
	audits := &scheduleAuditorStub{audit: dto.AuditResponse{
		FromCache: true,
		Summary:   dto.AuditSummary{Total: 1, High: 1},
		Conflicts: []models.EnhancedConflict{{
			ID:       "c1",
			Type:     models.ConflictRoomOverlap,
			Severity: models.AuditHigh,
		}},
	}}
	h := &ScheduleHandler{audits: audits}
	router := newScheduleRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schedule/conflicts?academic_year=2026&semester=1&refresh=false", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026", audits.lastQuery.AcademicYear)
	assert.Equal(t, "1", audits.lastQuery.Semester)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, true, envelope.Meta["from_cache"])
}

func TestScheduleHandlerConflictsPropagatesErrors(t *testing.T) {
	audits := &scheduleAuditorStub{
		auditErr: appErrors.Clone(appErrors.ErrValidation, "academic_year and semester are required"),
	}
	h := &ScheduleHandler{audits: audits}
	router := newScheduleRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schedule/conflicts", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestScheduleHandlerResolveRequiresPeriod(t *testing.T) {
	h := &ScheduleHandler{audits: &scheduleAuditorStub{}}
	router := newScheduleRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedule/conflicts/resolve", strings.NewReader(`{"allow_partial_resolution": true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerResolve(t *testing.T) {
	audits := &scheduleAuditorStub{resolution: models.ResolutionResult{
		Success:            true,
		SuccessRate:        1.0,
		RelaxedConstraints: []string{"building-travel"},
	}}
	h := &ScheduleHandler{audits: audits}
	router := newScheduleRouter(h)

	body := `{"academic_year": "2026", "semester": "1", "max_relaxation": 1}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedule/conflicts/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result models.ResolutionResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, []string{"building-travel"}, result.RelaxedConstraints)
}

func TestScheduleHandlerDraft(t *testing.T) {
	drafts := &draftPlacerStub{response: dto.DraftResponse{
		Slots: []models.TimeSlot{{ID: "s1", CourseID: "cs-101"}},
	}}
	h := &ScheduleHandler{drafts: drafts}
	router := newScheduleRouter(h)

	body := `{
		"academic_year": "2026",
		"semester": "1",
		"days": [1, 2],
		"start_times": ["09:00"],
		"duration_minutes": 60,
		"items": [{"course_id": "cs-101", "faculty_id": "fac-1", "room_id": "room-1", "year_level": 1, "weekly_count": 1}]
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedule/draft", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}
