package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"sentinela/internal/audit"
	"sentinela/internal/compliance"
	complianceHandler "sentinela/internal/compliance/handler"
	"sentinela/internal/identity"
	jwttoken "sentinela/internal/jwt_token"
	"sentinela/internal/platform/config"
	"sentinela/internal/platform/httpserver"
	"sentinela/internal/platform/logger"
	"sentinela/internal/platform/metrics"
	"sentinela/internal/platform/middleware"
	"sentinela/internal/platform/postgres"
	platformredis "sentinela/internal/platform/redis"
	"sentinela/internal/ratelimit"
	"sentinela/internal/security"
	securityHandler "sentinela/internal/security/handler"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres init failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores fall back to memory when Postgres is not configured, which keeps
	// local development and tests DSN-free.
	var (
		profileStore    identity.ProfileStore
		auditStore      audit.Store
		securityStore   security.Store
		complianceStore compliance.Store
	)
	if db != nil {
		profileStore = identity.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		securityStore = security.NewPostgresStore(db)
		complianceStore = compliance.NewPostgresStore(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		profileStore = identity.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		securityStore = security.NewInMemoryStore()
		complianceStore = compliance.NewInMemoryStore()
	}

	auditSvc := audit.NewService(auditStore, m)

	group, groupCtx := errgroup.WithContext(ctx)

	publisher, err := audit.NewPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
	if err != nil {
		log.Error("kafka init failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		inbox := make(chan audit.Entry, 256)
		auditSvc = auditSvc.WithMirror(inbox)
		worker := audit.NewWorker(publisher, inbox)
		group.Go(func() error {
			err := worker.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			publisher.Close(flushCtx)
		}()
	}

	identitySvc := identity.NewService(profileStore)
	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	securitySvc := security.NewService(securityStore, identitySvc, log, m, cfg.Security)
	complianceSvc := compliance.NewService(complianceStore, auditSvc, m)

	var recorder *ratelimit.Recorder
	if redisClient != nil {
		recorder = ratelimit.NewRecorder(redisClient, cfg.Redis.HitWindow, log)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(middleware.CORSPolicy{
		AllowedOrigins: cfg.AllowedOrigins,
		PrimaryOrigin:  cfg.PrimaryOrigin,
	}))
	router.Use(middleware.ClientIP)

	securityHandler.New(securitySvc, identitySvc, jwtSvc, recorder, log).Register(router)
	complianceHandler.New(complianceSvc, jwtSvc, recorder, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.HTTP, router)

	log.Info("starting sentinela", "addr", cfg.HTTP.Addr)

	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
