package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pnl-dashboard/internal/api"
	"pnl-dashboard/internal/config"
	"pnl-dashboard/internal/dashboard"
	"pnl-dashboard/internal/logger"
	"pnl-dashboard/internal/observability"
	"pnl-dashboard/internal/persist"
	"pnl-dashboard/internal/scheduler"
	"pnl-dashboard/internal/sheets"
	"pnl-dashboard/internal/storage/backend"
	"pnl-dashboard/internal/strategy"
)

func main() {
	cfgPath := os.Getenv("PNL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PNL_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	observability.Init(cfg.Metrics.Namespace)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := backend.Open(ctx, cfg.Storage, log.Named("storage"))
	if err != nil {
		log.Fatal("storage open failed", zap.Error(err))
	}
	defer kv.Close()

	codec, err := persist.NewCodec(cfg.Storage.Codec)
	if err != nil {
		log.Fatal("codec init failed", zap.Error(err))
	}
	repo := persist.NewRepository(kv, codec, persist.Options{Logger: log.Named("persist")})

	hub := api.NewHub(nil, log.Named("ws"))
	go hub.Run(ctx)

	sheetsClient := sheets.NewClient(sheets.Options{
		BaseURL: cfg.Sheets.BaseURL,
		Timeout: cfg.Sheets.Timeout,
		Logger:  log.Named("sheets"),
	})

	svc := dashboard.New(strategy.NewStore(strategy.Options{}), repo, dashboard.Options{
		Logger:    log.Named("dashboard"),
		Publisher: hub,
		Sheets:    sheetsClient,
	})
	if err := svc.Load(ctx); err != nil {
		log.Warn("failed to load saved state, starting empty", zap.Error(err))
	}

	server := api.New(svc, api.Options{
		Logger:         log.Named("api"),
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SheetsToken:    cfg.Sheets.ServiceToken,
		Hub:            hub,
	})

	if cfg.Scheduler.Enabled {
		runner := scheduler.New(log.Named("scheduler"), ctx)
		if cfg.Sheets.ServiceToken == "" {
			log.Warn("scheduler enabled without sheets.service_token, refresh job not registered")
		} else if _, err := runner.AddSheetsRefresh(cfg.Scheduler.RefreshSpec, svc, cfg.Sheets.ServiceToken); err != nil {
			log.Warn("cron register sheets refresh failed", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
