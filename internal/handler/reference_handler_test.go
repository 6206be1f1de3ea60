package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type referenceListerStub struct {
	departments []models.Department
	courses     []models.Course
	faculty     []models.Faculty
	rooms       []models.Room
	students    []models.Student
	err         error
	lastDept    string
}

func (s *referenceListerStub) ListDepartments(_ context.Context) ([]models.Department, error) {
	return s.departments, s.err
}

func (s *referenceListerStub) ListCourses(_ context.Context, departmentID string) ([]models.Course, error) {
	s.lastDept = departmentID
	return s.courses, s.err
}

func (s *referenceListerStub) ListFaculty(_ context.Context) ([]models.Faculty, error) {
	return s.faculty, s.err
}

func (s *referenceListerStub) ListRooms(_ context.Context) ([]models.Room, error) {
	return s.rooms, s.err
}

func (s *referenceListerStub) ListStudents(_ context.Context) ([]models.Student, error) {
	return s.students, s.err
}

func newReferenceRouter(repo referenceLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &ReferenceHandler{repo: repo}
	r := gin.New()
	r.GET("/departments", h.Departments)
	r.GET("/courses", h.Courses)
	r.GET("/faculty", h.Faculty)
	r.GET("/rooms", h.Rooms)
	r.GET("/students", h.Students)
	return r
}

func TestReferenceHandlerStudents(t *testing.T) {
	repo := &referenceListerStub{students: []models.Student{{
		ID:              "stu-1",
		FullName:        "Dana Reyes",
		DepartmentID:    "cs",
		YearLevel:       2,
		EnrolledCourses: pq.StringArray{"cs-201", "cs-210"},
	}}}
	router := newReferenceRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var students []models.Student
	require.NoError(t, json.Unmarshal(raw, &students))
	require.Len(t, students, 1)
	assert.Equal(t, "stu-1", students[0].ID)
	assert.Equal(t, pq.StringArray{"cs-201", "cs-210"}, students[0].EnrolledCourses)
}

func TestReferenceHandlerCoursesFilterByDepartment(t *testing.T) {
	repo := &referenceListerStub{courses: []models.Course{{ID: "cs-201", DepartmentID: "cs"}}}
	router := newReferenceRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/courses?department_id=cs", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cs", repo.lastDept)
}

func TestReferenceHandlerPropagatesErrors(t *testing.T) {
	repo := &referenceListerStub{err: appErrors.Clone(appErrors.ErrInternal, "failed to load students")}
	router := newReferenceRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInternal.Code, envelope.Error.Code)
}
