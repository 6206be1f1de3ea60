package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exposes login for operator accounts.
type AuthHandler struct {
	service authenticator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate and obtain an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
