package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"admissions/internal/service"
)

// ProgramHandler serves the program catalogue.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new program handler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// List godoc
// @Summary List open programs
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Program
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /programs [get]
func (h *ProgramHandler) List(c echo.Context) error {
	programs, err := h.programService.ListOpen(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, programs)
}
