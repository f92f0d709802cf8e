package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/loan"
	loanuc "lending-engine/internal/usecase/loan"
	repaymentuc "lending-engine/internal/usecase/repayment"
)

type LoanHandler struct {
	loans      *loanuc.Usecase
	repayments *repaymentuc.Usecase
}

func NewLoanHandler(loans *loanuc.Usecase, repayments *repaymentuc.Usecase) *LoanHandler {
	return &LoanHandler{loans: loans, repayments: repayments}
}

type applyReq struct {
	Amount          decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	TenureMonths    int             `json:"tenureMonths" validate:"gt=0,lte=360"`
	EmploymentType  string          `json:"employmentType" validate:"required,employment"`
	AnnualIncome    decimal.Decimal `json:"annualIncome" validate:"gte=0,dec2"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses" validate:"gte=0,dec2"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,loanstatus"`
}

type repaymentReq struct {
	Status string           `json:"status" validate:"required,oneof=ON_TIME LATE MISSED"`
	Amount *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gt=0,dec2"`
}

func (h *LoanHandler) Apply(c echo.Context) error {
	var req applyReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.loans.Apply(c.Request().Context(), principal(c), loanuc.ApplyInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) ListMine(c echo.Context) error {
	list, err := h.loans.ListMine(c.Request().Context(), principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": list})
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.loans.Get(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ChangeStatus(c echo.Context) error {
	var req statusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	to, _ := loan.ParseStatus(req.Status)
	res, err := h.loans.ChangeStatus(c.Request().Context(), principal(c), c.Param("id"), to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) PostRepayment(c echo.Context) error {
	var req repaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.repayments.Post(c.Request().Context(), principal(c), c.Param("id"),
		repaymentuc.PostInput{Status: req.Status, Amount: req.Amount})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
