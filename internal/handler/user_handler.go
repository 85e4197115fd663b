package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"userauth/internal/model"
	"userauth/internal/service"
)

// UserHandler bundles HTTP handlers for user reads.
type UserHandler struct {
	svc    service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name}
}

// GetUser godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), AuthContextFrom(c))
	if err != nil {
		return httpError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} UserResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(c, h.logger, err)
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}
