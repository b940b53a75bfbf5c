package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"kairos/internal/service"
)

// StressHandler handles stress entry endpoints.
type StressHandler struct {
	stressService service.StressService
}

// NewStressHandler creates a new stress handler.
func NewStressHandler(stressService service.StressService) *StressHandler {
	return &StressHandler{stressService: stressService}
}

// CreateStressRequest represents a new stress entry.
type CreateStressRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Strength    *int    `json:"strength" validate:"required"`
}

// PatchStressRequest represents a partial update of a stress entry.
type PatchStressRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,max=32"`
}

// AppendStrengthRequest represents a new strength reading.
type AppendStrengthRequest struct {
	Strength *int    `json:"strength" validate:"required"`
	Note     *string `json:"note" validate:"omitempty,max=1000"`
	Source   *string `json:"source" validate:"omitempty,max=32"`
}

// Create godoc
// @Summary Create a stress entry with its initial strength
// @Tags stress
// @Accept json
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Param request body CreateStressRequest true "Stress entry"
// @Success 201 {object} model.StressSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /stress [post]
func (h *StressHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(err)
	}
	var req CreateStressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	summary, err := h.stressService.Create(c.Request().Context(), user, service.CreateStressInput{
		Title:       req.Title,
		Description: req.Description,
		Strength:    *req.Strength,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, summary)
}

// List godoc
// @Summary List my stress entries, most recently measured first
// @Tags stress
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Success 200 {array} model.StressSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /stress [get]
func (h *StressHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(err)
	}

	summaries, err := h.stressService.List(c.Request().Context(), user)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// Get godoc
// @Summary Get a stress entry with its full history
// @Tags stress
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Param id path int true "Stress ID"
// @Success 200 {object} model.StressDetail
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stress/{id} [get]
func (h *StressHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondError(err)
	}

	detail, err := h.stressService.Get(c.Request().Context(), user, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Patch godoc
// @Summary Update title, description or status
// @Tags stress
// @Accept json
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Param id path int true "Stress ID"
// @Param request body PatchStressRequest true "Fields to change"
// @Success 200 {object} model.StressDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stress/{id} [patch]
func (h *StressHandler) Patch(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondError(err)
	}
	var req PatchStressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.stressService.Patch(c.Request().Context(), user, id, service.PatchStressInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Delete godoc
// @Summary Delete a stress entry and its history
// @Tags stress
// @Security CookieAuth
// @Security BearerAuth
// @Param id path int true "Stress ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stress/{id} [delete]
func (h *StressHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondError(err)
	}

	if err := h.stressService.Delete(c.Request().Context(), user, id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AppendStrength godoc
// @Summary Record a new strength reading
// @Tags stress
// @Accept json
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Param id path int true "Stress ID"
// @Param request body AppendStrengthRequest true "Reading"
// @Success 201 {object} model.StrengthReading
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stress/{id}/strength [post]
func (h *StressHandler) AppendStrength(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondError(err)
	}
	var req AppendStrengthRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reading, err := h.stressService.AppendStrength(c.Request().Context(), user, id, service.AppendStrengthInput{
		Strength: *req.Strength,
		Note:     req.Note,
		Source:   req.Source,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, reading)
}
