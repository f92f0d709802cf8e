package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Routes collects the handlers and middleware mounted by Register. Nil
// middleware entries are skipped.
type Routes struct {
	Health    *Handler
	Loans     *LoanHandler
	Admin     *AdminHandler
	Profile   *ProfileHandler
	Analytics *AnalyticsHandler

	Metrics     http.Handler
	Auth        echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)
	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}

	read := chain(r.Auth)
	write := chain(r.Auth, r.Idempotency)

	e.POST("/loans/apply", r.Loans.Apply, write...)
	e.GET("/loans/my", r.Loans.ListMine, read...)
	e.GET("/loans/:id", r.Loans.Get, read...)
	e.PUT("/loans/:id/status", r.Loans.ChangeStatus, write...)
	e.POST("/loans/:id/repayments", r.Loans.PostRepayment, write...)

	e.POST("/admin/override-loan/:loanId", r.Admin.Override, write...)
	e.GET("/auth/my-credit-score", r.Profile.CreditScore, read...)
	e.GET("/analytics/dashboard", r.Analytics.Dashboard, read...)
}

func chain(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
