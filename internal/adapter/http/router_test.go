package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"lending-engine/internal/adapter/middleware"
	mysqlrepo "lending-engine/internal/adapter/repository/mysql"
	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/audit"
	"lending-engine/internal/domain/underwriting"
	"lending-engine/internal/infrastructure/lock"
	"lending-engine/internal/infrastructure/metrics"
	"lending-engine/internal/testutil/dbtest"
	"lending-engine/internal/testutil/outboxmock"
	"lending-engine/internal/usecase/analytics"
	applicantuc "lending-engine/internal/usecase/applicant"
	loanuc "lending-engine/internal/usecase/loan"
	"lending-engine/internal/usecase/override"
	repaymentuc "lending-engine/internal/usecase/repayment"
)

var (
	secret = []byte("test-secret")

	applicantA = access.Principal{ID: strings.Repeat("a", 32), Role: access.RoleApplicant}
	applicantB = access.Principal{ID: strings.Repeat("b", 32), Role: access.RoleApplicant}
	officer    = access.Principal{ID: strings.Repeat("c", 32), Role: access.RoleLoanOfficer}
	analyst    = access.Principal{ID: strings.Repeat("d", 32), Role: access.RoleRiskAnalyst}
	admin      = access.Principal{ID: strings.Repeat("e", 32), Role: access.RoleAdmin}
)

const goodApply = `{"amount":10000,"tenureMonths":12,"employmentType":"Salaried","annualIncome":120000,"monthlyExpenses":4000}`

type server struct {
	e       *echo.Echo
	emitter *outboxmock.Emitter
}

func newServer(t *testing.T) *server {
	t.Helper()
	gdb := dbtest.Open(t)
	repos := mysqlrepo.Repos(gdb)
	tx := mysqlrepo.NewGormUoW(gdb)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	em := &outboxmock.Emitter{}
	relay := audit.NewRelay(repos.Outbox, em, log)

	loans := loanuc.NewUsecase(loanuc.Deps{
		UoW:     tx,
		Reads:   repos,
		Locker:  lock.NewLocal(),
		Rates:   underwriting.FixedRate(decimal.NewFromInt(10)),
		Audit:   relay,
		Log:     log,
		Metrics: m,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	Register(e, Routes{
		Health:      NewHandler(nil),
		Loans:       NewLoanHandler(loans, repaymentuc.NewUsecase(tx, relay, log, m)),
		Admin:       NewAdminHandler(override.NewUsecase(tx, relay, log, m)),
		Profile:     NewProfileHandler(applicantuc.NewUsecase(repos.Applicants)),
		Analytics:   NewAnalyticsHandler(analytics.NewUsecase(repos.Loans, repos.Applicants, repos.Repayments)),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Auth:        middleware.Auth(secret),
		Idempotency: middleware.Idempotency(rdb, time.Minute, log),
	})
	return &server{e: e, emitter: em}
}

func (s *server) do(t *testing.T, p access.Principal, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if p.ID != "" {
		tok, err := middleware.IssueToken(secret, p, time.Minute)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func expectCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// apply creates a loan for p and returns its id.
func (s *server) apply(t *testing.T, p access.Principal) string {
	t.Helper()
	rec := s.do(t, p, http.MethodPost, "/loans/apply", goodApply, nil)
	expectCode(t, rec, http.StatusCreated)
	return decode[loanuc.ApplyResult](t, rec).Loan.LoanID
}

func TestApply_Created(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, applicantA, http.MethodPost, "/loans/apply", goodApply, nil)
	expectCode(t, rec, http.StatusCreated)

	res := decode[loanuc.ApplyResult](t, rec)
	if res.Loan.Status != "APPLIED" || res.Loan.ApplicantID != applicantA.ID {
		t.Fatalf("unexpected loan: %+v", res.Loan)
	}
	if !res.Loan.MonthlyInstallment.Equal(decimal.RequireFromString("879.16")) {
		t.Fatalf("expected installment 879.16, got %s", res.Loan.MonthlyInstallment)
	}
	if !res.TotalPayable.Equal(decimal.RequireFromString("10549.92")) {
		t.Fatalf("expected total payable 10549.92, got %s", res.TotalPayable)
	}
	if res.AuditDegraded {
		t.Fatal("audit should have been delivered")
	}
	if ev := s.emitter.Events(); len(ev) != 1 || ev[0].Action != audit.ActionLoanApplied {
		t.Fatalf("expected one LOAN_APPLIED event, got %+v", ev)
	}
}

func TestApply_Rejections(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, applicantA, http.MethodPost, "/loans/apply",
		`{"amount":60000,"tenureMonths":12,"employmentType":"SALARIED","annualIncome":120000,"monthlyExpenses":0}`, nil)
	expectCode(t, rec, http.StatusBadRequest)
	body := decode[ErrorResponse](t, rec)
	if body.Code != string(underwriting.ReasonIncomeRatioExceeded) || body.Message == "" {
		t.Fatalf("unexpected rejection body: %+v", body)
	}

	s.apply(t, applicantA)
	rec = s.do(t, applicantA, http.MethodPost, "/loans/apply", goodApply, nil)
	expectCode(t, rec, http.StatusBadRequest)
	if got := decode[ErrorResponse](t, rec).Code; got != string(underwriting.ReasonDuplicateActiveLoan) {
		t.Fatalf("expected DUPLICATE_ACTIVE_LOAN, got %q", got)
	}
}

func TestApply_RequestErrors(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name string
		p    access.Principal
		body string
		code int
	}{
		{"no token", access.Principal{}, goodApply, http.StatusUnauthorized},
		{"officer cannot apply", officer, goodApply, http.StatusForbidden},
		{"malformed body", applicantA, `{"amount":`, http.StatusBadRequest},
		{"validation", applicantA, `{"amount":-1,"tenureMonths":12,"employmentType":"SALARIED","annualIncome":1}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectCode(t, s.do(t, tc.p, http.MethodPost, "/loans/apply", tc.body, nil), tc.code)
		})
	}

	rec := s.do(t, applicantA, http.MethodPost, "/loans/apply",
		`{"amount":0,"tenureMonths":400,"employmentType":"PIRATE","annualIncome":1}`, nil)
	body := decode[ErrorResponse](t, rec)
	for _, f := range []string{"amount", "tenureMonths", "employmentType"} {
		found := false
		for _, d := range body.Details {
			if d.Field == f {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected detail for %s, got %+v", f, body.Details)
		}
	}
}

func TestApply_IdempotentReplay(t *testing.T) {
	s := newServer(t)
	hdr := map[string]string{
		middleware.HeaderRequestID: strings.Repeat("1", 32),
		middleware.HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}

	first := s.do(t, applicantA, http.MethodPost, "/loans/apply", goodApply, hdr)
	expectCode(t, first, http.StatusCreated)
	second := s.do(t, applicantA, http.MethodPost, "/loans/apply", goodApply, hdr)
	expectCode(t, second, http.StatusCreated)

	if second.Header().Get(middleware.HeaderReplayed) != "true" {
		t.Fatal("expected replayed header on retry")
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	list := decode[struct {
		Loans []loanuc.LoanDTO `json:"loans"`
	}](t, s.do(t, applicantA, http.MethodGet, "/loans/my", "", nil))
	if len(list.Loans) != 1 {
		t.Fatalf("expected one loan after replay, got %d", len(list.Loans))
	}
}

func TestLoanReads(t *testing.T) {
	s := newServer(t)
	loanID := s.apply(t, applicantA)

	expectCode(t, s.do(t, applicantA, http.MethodGet, "/loans/"+loanID, "", nil), http.StatusOK)
	expectCode(t, s.do(t, officer, http.MethodGet, "/loans/"+loanID, "", nil), http.StatusOK)
	expectCode(t, s.do(t, applicantB, http.MethodGet, "/loans/"+loanID, "", nil), http.StatusNotFound)
	expectCode(t, s.do(t, officer, http.MethodGet, "/loans/"+strings.Repeat("f", 32), "", nil), http.StatusNotFound)

	list := decode[struct {
		Loans []loanuc.LoanDTO `json:"loans"`
	}](t, s.do(t, applicantB, http.MethodGet, "/loans/my", "", nil))
	if len(list.Loans) != 0 {
		t.Fatalf("applicant B should see no loans, got %d", len(list.Loans))
	}
}

func TestLifecycleAndRepayment(t *testing.T) {
	s := newServer(t)
	loanID := s.apply(t, applicantA)
	statusPath := "/loans/" + loanID + "/status"

	expectCode(t, s.do(t, applicantA, http.MethodPut, statusPath, `{"status":"UNDER_REVIEW"}`, nil), http.StatusForbidden)
	expectCode(t, s.do(t, officer, http.MethodPut, statusPath, `{"status":"ACTIVE"}`, nil), http.StatusBadRequest)
	expectCode(t, s.do(t, officer, http.MethodPut, statusPath, `{"status":"SOMETHING"}`, nil), http.StatusUnprocessableEntity)

	for _, st := range []string{"UNDER_REVIEW", "APPROVED", "ACTIVE"} {
		rec := s.do(t, officer, http.MethodPut, statusPath, `{"status":"`+st+`"}`, nil)
		expectCode(t, rec, http.StatusOK)
		if got := decode[loanuc.StatusResult](t, rec).Loan.Status; got != st {
			t.Fatalf("expected %s, got %s", st, got)
		}
	}

	repayPath := "/loans/" + loanID + "/repayments"
	expectCode(t, s.do(t, applicantA, http.MethodPost, repayPath, `{"status":"ON_TIME"}`, nil), http.StatusForbidden)

	rec := s.do(t, officer, http.MethodPost, repayPath, `{"status":"ON_TIME"}`, nil)
	expectCode(t, rec, http.StatusCreated)
	res := decode[repaymentuc.PostResult](t, rec)
	if !res.Repayment.Amount.Equal(decimal.RequireFromString("879.16")) {
		t.Fatalf("expected default amount 879.16, got %s", res.Repayment.Amount)
	}
	if res.Loan.RemainingAmount == nil || !res.Loan.RemainingAmount.Equal(decimal.RequireFromString("9204.17")) {
		t.Fatalf("expected remaining 9204.17, got %v", res.Loan.RemainingAmount)
	}

	other := s.apply(t, applicantB)
	rec = s.do(t, officer, http.MethodPost, "/loans/"+other+"/repayments", `{"status":"ON_TIME"}`, nil)
	expectCode(t, rec, http.StatusConflict)
}

func TestAdminOverride(t *testing.T) {
	s := newServer(t)
	loanID := s.apply(t, applicantA)
	path := "/admin/override-loan/" + loanID

	expectCode(t, s.do(t, officer, http.MethodPost, path, `{"status":"APPROVED"}`, nil), http.StatusForbidden)
	expectCode(t, s.do(t, admin, http.MethodPost, path, `{"status":"APPLIED"}`, nil), http.StatusUnprocessableEntity)
	expectCode(t, s.do(t, admin, http.MethodPost, "/admin/override-loan/"+strings.Repeat("f", 32), `{"status":"APPROVED"}`, nil), http.StatusNotFound)
	expectCode(t, s.do(t, admin, http.MethodPost, "/admin/override-loan/"+strings.Repeat("f", 32), `{"status":"APPLIED"}`, nil), http.StatusNotFound)

	rec := s.do(t, admin, http.MethodPost, path, `{"status":"DEFAULTED"}`, nil)
	expectCode(t, rec, http.StatusOK)
	res := decode[override.Result](t, rec)
	if res.OldStatus != "APPLIED" || res.NewStatus != "DEFAULTED" {
		t.Fatalf("unexpected override result: %+v", res)
	}

	ev := s.emitter.Events()
	last := ev[len(ev)-1]
	if last.Action != audit.ActionLoanStatusOverride || last.LoanID != loanID {
		t.Fatalf("expected override event for %s, got %+v", loanID, last)
	}
}

func TestCreditScoreAndDashboard(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, applicantA, http.MethodGet, "/auth/my-credit-score", "", nil)
	expectCode(t, rec, http.StatusOK)
	if got := decode[applicantuc.CreditScoreDTO](t, rec); got.CreditScore != 300 || got.HasHistory {
		t.Fatalf("expected default score 300 without history, got %+v", got)
	}

	s.apply(t, applicantA)
	expectCode(t, s.do(t, applicantA, http.MethodGet, "/analytics/dashboard", "", nil), http.StatusForbidden)

	rec = s.do(t, analyst, http.MethodGet, "/analytics/dashboard", "", nil)
	expectCode(t, rec, http.StatusOK)
	if d := decode[analytics.Dashboard](t, rec); d.TotalLoans != 1 {
		t.Fatalf("expected 1 loan on dashboard, got %+v", d)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.apply(t, applicantA)

	rec := s.do(t, access.Principal{}, http.MethodGet, "/metrics", "", nil)
	expectCode(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `lending_applications_total{outcome="accepted"} 1`) {
		t.Fatalf("expected accepted counter in metrics output:\n%s", rec.Body.String())
	}
}
