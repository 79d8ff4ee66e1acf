package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"itongue/internal/service"
)

// LanguageHandler serves the language catalog.
type LanguageHandler struct {
	languageService service.LanguageService
}

// NewLanguageHandler creates a new language handler.
func NewLanguageHandler(languageService service.LanguageService) *LanguageHandler {
	return &LanguageHandler{languageService: languageService}
}

// List godoc
// @Summary List the language catalog
// @Tags languages
// @Produce json
// @Success 200 {array} model.Language
// @Router /languages [get]
func (h *LanguageHandler) List(c echo.Context) error {
	languages, err := h.languageService.ListLanguages(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, languages)
}
