package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"lending-engine/internal/adapter/middleware"
	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/underwriting"
)

// bindAndValidate decodes the body into req and runs the validator. The
// returned error is already written to the client.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, writeError(c, err)
	}
	return true, nil
}

func principal(c echo.Context) access.Principal { return middleware.PrincipalFrom(c) }

// writeError maps domain errors to status codes. Unclassified errors become a
// generic 500; their detail is only logged.
func writeError(c echo.Context, err error) error {
	var (
		ve  validator.ValidationErrors
		rej *underwriting.RejectionError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	case errors.As(err, &rej):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "loan application rejected",
			Code:    string(rej.Reason),
			Message: rej.Reason.Message(),
		})
	case errors.Is(err, loan.ErrValidation), errors.Is(err, loan.ErrInvalidOverrideTarget):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Message: err.Error()})
	case errors.Is(err, loan.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status transition", Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, loan.ErrNotRepayable):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "loan does not accept repayments", Code: "NOT_REPAYABLE", Message: err.Error()})
	case errors.Is(err, loan.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	case errors.Is(err, access.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	case errors.Is(err, access.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled"})
	}
	slog.ErrorContext(c.Request().Context(), "http: unhandled error",
		"method", c.Request().Method, "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
