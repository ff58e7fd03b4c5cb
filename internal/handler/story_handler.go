package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storysmith/internal/errors"
	"storysmith/internal/service"
)

// StoryHandler handles story generation and history endpoints.
type StoryHandler struct {
	storyService service.StoryService
}

// NewStoryHandler creates a new story handler.
func NewStoryHandler(storyService service.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

// Defaults mirror the original dashboard settings panel.
const (
	defaultGenre      = "Any"
	defaultLength     = 400
	defaultCreativity = 0.7
)

// GenerateRequest represents a story generation request. Length and
// creativity are pointers to tell an omitted setting apart from an
// explicit zero; an explicit out-of-range value is rejected, never
// silently replaced.
type GenerateRequest struct {
	Prompt     string   `json:"prompt" validate:"required"`
	Genre      string   `json:"genre" validate:"omitempty,oneof=Any Fantasy Sci-Fi Adventure Mystery Horror Romance"`
	Length     *int     `json:"length" validate:"omitnil,gte=200,lte=800"`
	Creativity *float64 `json:"creativity" validate:"omitnil,gte=0.1,lte=1.0"`
}

// settings resolves the validated request into concrete values,
// filling defaults for anything the client omitted.
func (r *GenerateRequest) settings() (genre string, length int, creativity float64) {
	genre, length, creativity = r.Genre, defaultLength, defaultCreativity
	if genre == "" {
		genre = defaultGenre
	}
	if r.Length != nil {
		length = *r.Length
	}
	if r.Creativity != nil {
		creativity = *r.Creativity
	}
	return genre, length, creativity
}

// Generate godoc
// @Summary Generate a new story, spending credits
// @Tags stories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateRequest true "Story settings"
// @Success 201 {object} service.GenerateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /stories [post]
func (h *StoryHandler) Generate(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	genre, length, creativity := req.settings()

	result, err := h.storyService.Generate(c.Request().Context(), email, req.Prompt, genre, length, creativity)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, result)
}

// List godoc
// @Summary Story history in chronological order
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Story
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stories [get]
func (h *StoryHandler) List(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	stories, err := h.storyService.ListStories(c.Request().Context(), email)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, stories)
}

// Presets godoc
// @Summary One-click prompt presets
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.Preset
// @Router /stories/presets [get]
func (h *StoryHandler) Presets(c echo.Context) error {
	return c.JSON(http.StatusOK, service.Presets)
}

// Download godoc
// @Summary Download one story as plain text
// @Tags stories
// @Produce plain
// @Security BearerAuth
// @Param id path string true "Story ID"
// @Success 200 {string} string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stories/{id}/download [get]
func (h *StoryHandler) Download(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid story ID",
			Code:  "INVALID_UUID",
		})
	}

	export, err := h.storyService.ExportStory(c.Request().Context(), email, storyID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(export.Content))
}
