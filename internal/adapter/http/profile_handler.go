package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lending-engine/internal/usecase/analytics"
	applicantuc "lending-engine/internal/usecase/applicant"
)

type ProfileHandler struct{ uc *applicantuc.Usecase }

func NewProfileHandler(uc *applicantuc.Usecase) *ProfileHandler { return &ProfileHandler{uc: uc} }

func (h *ProfileHandler) CreditScore(c echo.Context) error {
	dto, err := h.uc.CreditScore(c.Request().Context(), principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type AnalyticsHandler struct{ uc *analytics.Usecase }

func NewAnalyticsHandler(uc *analytics.Usecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	d, err := h.uc.Dashboard(c.Request().Context(), principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
