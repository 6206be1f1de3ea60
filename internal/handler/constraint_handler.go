package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

// ConstraintHandler exposes the constraint registry for inspection and
// run-scoped rule management.
type ConstraintHandler struct {
	registry *service.ConstraintRegistry
}

// NewConstraintHandler constructs the handler.
func NewConstraintHandler(registry *service.ConstraintRegistry) *ConstraintHandler {
	return &ConstraintHandler{registry: registry}
}

// List godoc
// @Summary List registered constraints
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints [get]
func (h *ConstraintHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.registry.List(), nil)
}

// Create godoc
// @Summary Register a constraint
// @Description Dynamic rules should carry a dynamic- or pref- id prefix so they can be cleared per planning run.
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body models.Constraint true "Constraint"
// @Success 201 {object} response.Envelope
// @Router /constraints [post]
func (h *ConstraintHandler) Create(c *gin.Context) {
	var constraint models.Constraint
	if err := c.ShouldBindJSON(&constraint); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid constraint payload"))
		return
	}
	if err := h.registry.Add(constraint); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, constraint)
}

// Delete godoc
// @Summary Unregister a constraint
// @Tags Constraints
// @Param id path string true "Constraint ID"
// @Success 204
// @Router /constraints/{id} [delete]
func (h *ConstraintHandler) Delete(c *gin.Context) {
	if !h.registry.Remove(c.Param("id")) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "constraint not found"))
		return
	}
	response.NoContent(c)
}

// ClearDynamic godoc
// @Summary Clear run-scoped constraints
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints/dynamic [delete]
func (h *ConstraintHandler) ClearDynamic(c *gin.Context) {
	removed := h.registry.ClearDynamic()
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
