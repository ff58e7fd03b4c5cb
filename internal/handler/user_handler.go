package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storysmith/internal/errors"
	"storysmith/internal/service"
)

// UserHandler handles profile and admin endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// AdminBoostRequest carries the out-of-band admin override code.
type AdminBoostRequest struct {
	Code string `json:"code" validate:"required"`
}

// Me godoc
// @Summary Current user's profile with refreshed credit balance
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.Profile(c.Request().Context(), email)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, profile)
}

// AdminBoost godoc
// @Summary Set credits to the privileged balance when the admin code matches
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdminBoostRequest true "Admin code"
// @Success 200 {object} service.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/boost [post]
func (h *UserHandler) AdminBoost(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	var req AdminBoostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.userService.AdminBoost(c.Request().Context(), email, req.Code)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, profile)
}
