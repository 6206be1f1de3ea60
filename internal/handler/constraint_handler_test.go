package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

func newConstraintRouter() (*gin.Engine, *service.ConstraintRegistry) {
	gin.SetMode(gin.TestMode)
	registry := service.NewConstraintRegistry(nil)
	h := NewConstraintHandler(registry)
	r := gin.New()
	r.GET("/constraints", h.List)
	r.POST("/constraints", h.Create)
	r.DELETE("/constraints/dynamic", h.ClearDynamic)
	r.DELETE("/constraints/:id", h.Delete)
	return r, registry
}

func TestConstraintHandlerListSeeds(t *testing.T) {
	router, _ := newConstraintRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/constraints", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var constraints []models.Constraint
	require.NoError(t, json.Unmarshal(raw, &constraints))
	require.Len(t, constraints, 7)
	assert.Equal(t, service.ConstraintRoomOverlap, constraints[0].ID)
}

func TestConstraintHandlerCreate(t *testing.T) {
	router, registry := newConstraintRouter()

	body := `{
		"id": "pref-morning-labs",
		"name": "Prefer morning lab sessions",
		"type": "soft",
		"category": "preference",
		"importance": 120,
		"can_relax": true,
		"relaxation_penalty": 10
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/constraints", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, registry.List(), 8)
}

func TestConstraintHandlerCreateRejectsRelaxableHard(t *testing.T) {
	router, registry := newConstraintRouter()

	body := `{
		"id": "campus-curfew",
		"name": "Campus curfew",
		"type": "hard",
		"category": "resource",
		"importance": 900,
		"can_relax": true
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/constraints", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
	assert.Len(t, registry.List(), 7, "rejected constraints are not registered")
}

func TestConstraintHandlerDelete(t *testing.T) {
	router, registry := newConstraintRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/constraints/"+service.ConstraintBuildingTravel, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, registry.List(), 6)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/constraints/"+service.ConstraintBuildingTravel, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConstraintHandlerClearDynamic(t *testing.T) {
	router, registry := newConstraintRouter()
	require.NoError(t, registry.Add(models.Constraint{
		ID: "dynamic-exam-week", Name: "Exam week freeze", Type: models.ConstraintSoft,
		Category: models.CategoryResource, Importance: 100, CanRelax: true,
	}))
	require.NoError(t, registry.Add(models.Constraint{
		ID: "pref-no-fridays", Name: "No Friday sessions", Type: models.ConstraintSoft,
		Category: models.CategoryPreference, Importance: 50, CanRelax: true,
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/constraints/dynamic", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["removed"])
	assert.Len(t, registry.List(), 7)
}
