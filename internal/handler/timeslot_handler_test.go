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
)

type slotManagerStub struct {
	slots      []models.TimeSlot
	total      int
	slot       *models.TimeSlot
	err        error
	lastFilter models.TimeSlotFilter
	deletedID  string
	deletedGrp string
}

func (s *slotManagerStub) List(_ context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	s.lastFilter = filter
	return s.slots, s.total, s.err
}

func (s *slotManagerStub) Get(_ context.Context, _ string) (*models.TimeSlot, error) {
	return s.slot, s.err
}

func (s *slotManagerStub) Create(_ context.Context, _ dto.CreateTimeSlotRequest) (*models.TimeSlot, error) {
	return s.slot, s.err
}

func (s *slotManagerStub) Update(_ context.Context, _ string, _ dto.UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	return s.slot, s.err
}

func (s *slotManagerStub) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return s.err
}

func (s *slotManagerStub) CreateJoint(_ context.Context, _ dto.CreateJointSessionRequest) ([]models.TimeSlot, error) {
	return s.slots, s.err
}

func (s *slotManagerStub) CreateSplit(_ context.Context, _ dto.CreateSplitClassRequest) ([]models.TimeSlot, error) {
	return s.slots, s.err
}

func (s *slotManagerStub) DeleteGroup(_ context.Context, groupID string) error {
	s.deletedGrp = groupID
	return s.err
}

func newSlotRouter(h *TimeSlotHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/timeslots", h.List)
	r.GET("/timeslots/:id", h.Get)
	r.POST("/timeslots", h.Create)
	r.PUT("/timeslots/:id", h.Update)
	r.DELETE("/timeslots/:id", h.Delete)
	r.POST("/timeslots/joint", h.CreateJoint)
	r.POST("/timeslots/split", h.CreateSplit)
	r.DELETE("/timeslots/groups/:groupId", h.DeleteGroup)
	return r
}

func TestTimeSlotHandlerListBindsFilter(t *testing.T) {
	svc := &slotManagerStub{slots: []models.TimeSlot{{ID: "s1"}}, total: 42}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/timeslots?academic_year=2026&semester=1&faculty_id=fac-1&day_of_week=2&page=3&page_size=20", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026", svc.lastFilter.AcademicYear)
	assert.Equal(t, "fac-1", svc.lastFilter.FacultyID)
	assert.Equal(t, 2, svc.lastFilter.DayOfWeek)
	assert.Equal(t, 3, svc.lastFilter.Page)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 3, envelope.Pagination.Page)
	assert.Equal(t, 20, envelope.Pagination.PageSize)
	assert.Equal(t, 42, envelope.Pagination.TotalCount)
}

func TestTimeSlotHandlerGetNotFound(t *testing.T) {
	svc := &slotManagerStub{err: appErrors.Clone(appErrors.ErrNotFound, "time slot not found")}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/timeslots/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func TestTimeSlotHandlerCreate(t *testing.T) {
	svc := &slotManagerStub{slot: &models.TimeSlot{ID: "created-1", CourseID: "cs-300"}}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	body := `{
		"day_of_week": 2,
		"start_time": "09:00",
		"end_time": "10:30",
		"academic_year": "2026",
		"semester": "1",
		"year_level": 3,
		"department_id": "cs",
		"course_id": "cs-300",
		"faculty_id": "fac-9",
		"room_id": "room-9"
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/timeslots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var slot models.TimeSlot
	require.NoError(t, json.Unmarshal(raw, &slot))
	assert.Equal(t, "created-1", slot.ID)
}

func TestTimeSlotHandlerCreateConflict(t *testing.T) {
	svc := &slotManagerStub{err: appErrors.Clone(appErrors.ErrConflict, "scheduling conflict: room is occupied")}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/timeslots", strings.NewReader(`{"day_of_week": 2}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrConflict.Code, envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "scheduling conflict")
}

func TestTimeSlotHandlerDelete(t *testing.T) {
	svc := &slotManagerStub{}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/timeslots/s1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s1", svc.deletedID)
}

func TestTimeSlotHandlerCreateJoint(t *testing.T) {
	svc := &slotManagerStub{slots: []models.TimeSlot{
		{ID: "j1", GroupID: "jg-1", GroupType: models.GroupJoint},
		{ID: "j2", GroupID: "jg-1", GroupType: models.GroupJoint},
	}}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	body := `{
		"day_of_week": 3,
		"start_time": "10:00",
		"end_time": "11:30",
		"academic_year": "2026",
		"semester": "1",
		"year_level": 2,
		"department_id": "cs",
		"course_ids": ["cs-210", "cs-211"],
		"faculty_id": "fac-5",
		"room_id": "room-5"
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/timeslots/joint", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var slots []models.TimeSlot
	require.NoError(t, json.Unmarshal(raw, &slots))
	assert.Len(t, slots, 2)
}

func TestTimeSlotHandlerDeleteGroup(t *testing.T) {
	svc := &slotManagerStub{}
	router := newSlotRouter(&TimeSlotHandler{service: svc})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/timeslots/groups/jg-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "jg-1", svc.deletedGrp)
}
