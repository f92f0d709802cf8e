package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/usecase/override"
)

type AdminHandler struct{ uc *override.Usecase }

func NewAdminHandler(uc *override.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

type overrideReq struct {
	Status string `json:"status" validate:"required,loanstatus"`
}

// Override forces a loan into APPROVED, REJECTED or DEFAULTED.
func (h *AdminHandler) Override(c echo.Context) error {
	var req overrideReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	to, _ := loan.ParseStatus(req.Status)
	res, err := h.uc.OverrideStatus(c.Request().Context(), principal(c), c.Param("loanId"), to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
