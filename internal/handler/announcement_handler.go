package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"admissions/internal/service"
)

// AnnouncementHandler serves announcements.
type AnnouncementHandler struct {
	announcementService service.AnnouncementService
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(announcementService service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// List godoc
// @Summary List announcements visible to the caller's role
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Announcement
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	items, err := h.announcementService.ListFor(c.Request().Context(), claims.Role)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}
