package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	httpadp "lending-engine/internal/adapter/http"
	"lending-engine/internal/adapter/middleware"
	mysqlrepo "lending-engine/internal/adapter/repository/mysql"
	"lending-engine/internal/config"
	"lending-engine/internal/domain/audit"
	"lending-engine/internal/domain/underwriting"
	"lending-engine/internal/infrastructure/auditlog"
	"lending-engine/internal/infrastructure/cache"
	"lending-engine/internal/infrastructure/db"
	"lending-engine/internal/infrastructure/lock"
	"lending-engine/internal/infrastructure/logging"
	"lending-engine/internal/infrastructure/metrics"
	"lending-engine/internal/usecase/analytics"
	applicantuc "lending-engine/internal/usecase/applicant"
	loanuc "lending-engine/internal/usecase/loan"
	"lending-engine/internal/usecase/override"
	repaymentuc "lending-engine/internal/usecase/repayment"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api: exiting", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repos := mysqlrepo.Repos(gdb)
	tx := mysqlrepo.NewGormUoW(gdb)
	relay := audit.NewRelay(repos.Outbox, auditlog.NewStreamEmitter(rdb, cfg.AuditStream), log)

	loans := loanuc.NewUsecase(loanuc.Deps{
		UoW:     tx,
		Reads:   repos,
		Locker:  lock.NewRedis(rdb, cfg.ApplyLockTTL),
		Rates:   underwriting.FixedRate(cfg.InterestRatePercent),
		Audit:   relay,
		Log:     log,
		Metrics: m,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db":    sqlDB.PingContext,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:       httpadp.NewLoanHandler(loans, repaymentuc.NewUsecase(tx, relay, log, m)),
		Admin:       httpadp.NewAdminHandler(override.NewUsecase(tx, relay, log, m)),
		Profile:     httpadp.NewProfileHandler(applicantuc.NewUsecase(repos.Applicants)),
		Analytics:   httpadp.NewAnalyticsHandler(analytics.NewUsecase(repos.Loans, repos.Applicants, repos.Repayments)),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Auth:        middleware.Auth([]byte(cfg.JWTSecret)),
		Idempotency: middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.AppPort
		log.Info("api: listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx, cfg.AuditRelayInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("api: shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
