package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dudrie/scheinprogramm.releases-sub000/config"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/api/handler"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/api/router"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/repository"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/storage"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/idgen"
	applogger "github.com/Dudrie/scheinprogramm.releases-sub000/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config/config.yaml or ./config.yaml)")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting schein tracker",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. wiring: Repository → Service → Handler
	ids := idgen.New()
	repo := repository.NewRepository()
	svc := service.NewService(cfg, repo, ids, storage.NewFileStore(), logger)
	h := handler.NewHandler(svc)

	// 4. optional semester from the last session
	if path := cfg.Storage.AutoloadFile; path != "" {
		switch err := svc.Semester.LoadSemester(context.Background(), path); {
		case err == nil:
			logger.Info("semester loaded on startup", zap.String("path", path))
		case errors.Is(err, os.ErrNotExist):
			logger.Info("autoload file not found, starting empty", zap.String("path", path))
		default:
			logger.Warn("autoload failed, starting empty", zap.String("path", path), zap.Error(err))
		}
	}

	// 5. router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(cfg, h, logger)

	// 6. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
