package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/repository"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type referenceLister interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListCourses(ctx context.Context, departmentID string) ([]models.Course, error)
	ListFaculty(ctx context.Context) ([]models.Faculty, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
}

// ReferenceHandler exposes the read-only lookup tables.
type ReferenceHandler struct {
	repo referenceLister
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(repo *repository.ReferenceRepository) *ReferenceHandler {
	return &ReferenceHandler{repo: repo}
}

// Departments godoc
// @Summary List departments
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *ReferenceHandler) Departments(c *gin.Context) {
	items, err := h.repo.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Courses godoc
// @Summary List courses
// @Tags Reference
// @Produce json
// @Param department_id query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *ReferenceHandler) Courses(c *gin.Context) {
	items, err := h.repo.ListCourses(c.Request.Context(), c.Query("department_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Faculty godoc
// @Summary List active faculty
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *ReferenceHandler) Faculty(c *gin.Context) {
	items, err := h.repo.ListFaculty(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Rooms godoc
// @Summary List rooms
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ReferenceHandler) Rooms(c *gin.Context) {
	items, err := h.repo.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Students godoc
// @Summary List students with their course enrollments
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *ReferenceHandler) Students(c *gin.Context) {
	items, err := h.repo.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
