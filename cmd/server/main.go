package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"rollcall/internal/attendance"
	attendancehandler "rollcall/internal/attendance/handler"
	attendancemetrics "rollcall/internal/attendance/metrics"
	"rollcall/internal/audit"
	httpapi "rollcall/internal/http"
	"rollcall/internal/platform/config"
	"rollcall/internal/platform/httpserver"
	"rollcall/internal/platform/logger"
	platformmetrics "rollcall/internal/platform/metrics"
	"rollcall/internal/platform/postgres"
	platformredis "rollcall/internal/platform/redis"
	"rollcall/internal/roster"
	rosterhandler "rollcall/internal/roster/handler"
	rostermetrics "rollcall/internal/roster/metrics"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal module packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("rollcall exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	checks := map[string]httpapi.HealthChecker{}

	// Stores: postgres when configured, memory otherwise.
	var (
		rosterStore     roster.Store
		attendanceStore attendance.Store
	)
	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		pgRoster, err := roster.NewPostgresStore(db)
		if err != nil {
			return err
		}
		pgAttendance, err := attendance.NewPostgresStore(db)
		if err != nil {
			return err
		}
		if err := pgRoster.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := pgAttendance.EnsureSchema(ctx); err != nil {
			return err
		}
		rosterStore = pgRoster
		attendanceStore = pgAttendance
		checks["postgres"] = dbHealth{db}
		log.Info("using postgres stores")
	} else {
		rosterStore = roster.NewInMemoryStore()
		attendanceStore = attendance.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cached, err := roster.NewCachedStore(rosterStore, redisClient.Client, cfg.PolicyCacheTTL, log)
		if err != nil {
			return err
		}
		rosterStore = cached
		checks["redis"] = redisClient
		log.Info("policy cache enabled", "ttl", cfg.PolicyCacheTTL)
	}

	// Audit trail: kafka sink when brokers are configured, memory otherwise.
	// Events flow through a buffered queue drained by a background worker so
	// slow sinks never stall request handling.
	var auditSink audit.Store = audit.NewInMemoryStore()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		auditSink = kafkaSink
		log.Info("audit events flowing to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	auditQueue := audit.NewQueue(auditSink, 1024)
	auditPublisher := audit.NewPublisher(auditQueue)

	// Roster module.
	detector, err := roster.NewConflictDetector(rosterStore)
	if err != nil {
		return err
	}
	rosterService, err := roster.NewService(rosterStore, detector, auditPublisher, log, rostermetrics.New())
	if err != nil {
		return err
	}

	// Attendance module.
	attendanceService, err := attendance.NewService(rosterStore, attendanceStore, auditPublisher, log, attendancemetrics.New())
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Roster:     rosterhandler.New(rosterService, log),
		Attendance: attendancehandler.New(attendanceService, log),
		HTTP:       platformmetrics.New(),
		Checks:     checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting rollcall", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := audit.NewWorker(auditSink, auditQueue.Events()).Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// dbHealth adapts *sql.DB to the router's health check.
type dbHealth struct {
	db interface {
		PingContext(ctx context.Context) error
	}
}

func (h dbHealth) Health(ctx context.Context) error { return h.db.PingContext(ctx) }
