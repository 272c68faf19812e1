package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	anchorhandler "ijazah/internal/anchor/handler"
	"ijazah/internal/anchor/ledger"
	"ijazah/internal/anchor/orchestrator"
	anchorstore "ijazah/internal/anchor/store"
	"ijazah/internal/anchor/tracer"
	authhandler "ijazah/internal/auth/handler"
	authservice "ijazah/internal/auth/service"
	authstore "ijazah/internal/auth/store"
	credentialhandler "ijazah/internal/credential/handler"
	credentialservice "ijazah/internal/credential/service"
	credentialstore "ijazah/internal/credential/store"
	holderhandler "ijazah/internal/holder/handler"
	holderservice "ijazah/internal/holder/service"
	holderstore "ijazah/internal/holder/store"
	"ijazah/internal/jwttoken"
	"ijazah/internal/platform/config"
	"ijazah/internal/platform/database"
	"ijazah/internal/platform/health"
	"ijazah/internal/platform/httpserver"
	"ijazah/internal/platform/logger"
	"ijazah/internal/platform/metrics"
	programhandler "ijazah/internal/program/handler"
	programservice "ijazah/internal/program/service"
	programstore "ijazah/internal/program/store"
	"ijazah/internal/render"
	"ijazah/internal/seeder"
	httptransport "ijazah/internal/transport/http"
	verificationhandler "ijazah/internal/verification/handler"
	verificationservice "ijazah/internal/verification/service"
	verificationstore "ijazah/internal/verification/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	log.Info("initializing ijazah service",
		"addr", cfg.Addr,
		"ledger_configured", cfg.Ledger.Configured(),
		"network", cfg.Ledger.Network,
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var (
		users       authstore.Store
		programs    programstore.Store
		holders     holderstore.Store
		credentials credentialstore.Store
		anchors     anchorstore.Store
		events      verificationstore.Store
	)
	if pool != nil {
		users = authstore.NewPostgres(pool.DB())
		programs = programstore.NewPostgres(pool.DB())
		holders = holderstore.NewPostgres(pool.DB())
		credentials = credentialstore.NewPostgres(pool.DB())
		anchors = anchorstore.NewPostgres(pool.DB())
		events = verificationstore.NewPostgres(pool.DB())
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
		users = authstore.NewInMemoryStore()
		programs = programstore.NewInMemoryStore()
		holders = holderstore.NewInMemoryStore()
		credentials = credentialstore.NewInMemoryStore()
		anchors = anchorstore.NewInMemoryStore()
		events = verificationstore.NewInMemoryStore()
	}

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "ijazah", cfg.TokenTTL)
	authSvc := authservice.NewService(users, jwtService, cfg.TokenTTL, authservice.WithLogger(log))
	programSvc := programservice.NewService(programs)
	holderSvc := holderservice.NewService(holders, holderservice.ProgramStoreChecker{Store: programs})
	credentialSvc := credentialservice.NewService(credentials, holders, programs, anchors,
		credentialservice.WithLogger(log),
		credentialservice.WithMetrics(m),
	)

	// Chain clients are deployment-specific adapters behind the ledger port.
	// This binary ships only the stub, which keeps the full workflow runnable
	// in development.
	if cfg.Ledger.RPCURL == "" {
		log.Warn("no LEDGER_RPC_URL configured, using stub ledger")
	}
	var chain ledger.Ledger = ledger.NewStub()
	publisher := orchestrator.New(credentialSvc, anchors, chain, orchestrator.Config{
		Network:         cfg.Ledger.Network,
		ContractAddress: cfg.Ledger.ContractAddress,
		ExplorerBaseURL: cfg.Ledger.ExplorerBaseURL,
		ConfirmTimeout:  cfg.Ledger.ConfirmTimeout,
	},
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
		orchestrator.WithTracer(tracer.NewOTel()),
	)

	verifySvc := verificationservice.NewService(anchors, credentials, holders, programs, events,
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(m),
	)

	if pool == nil {
		if err := seeder.New(authSvc, programSvc, holderSvc, log).Run(context.Background()); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	healthHandler := health.New(os.Getenv("IJAZAH_ENV"))
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:         authhandler.New(authSvc, log),
		Credentials:  credentialhandler.New(credentialSvc, log),
		Holders:      holderhandler.New(holderSvc, log),
		Programs:     programhandler.New(programSvc, log),
		Anchors: anchorhandler.New(publisher, anchors, log).
			WithArtifacts(credentialSvc, render.NewURLBuilder(cfg.Verification.PublicBaseURL), render.TextRenderer{}),
		Verification: verificationhandler.New(verifySvc, log),
		Health:       healthHandler,
		JWTValidator: jwtService,
		Logger:       log,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
