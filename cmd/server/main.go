package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/api"
	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/metrics"
	"github.com/anggol23/Be-Resonansi/internal/model"
	"github.com/anggol23/Be-Resonansi/internal/session"
	"github.com/anggol23/Be-Resonansi/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}

	// 初始化logger
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(logrus.InfoLevel)

	if err := run(cfg); err != nil {
		logrus.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		return fmt.Errorf("initialise repository: %w", err)
	}
	if err := model.SeedAdmin(ctx, repo, cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed admin account")
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}

	m := metrics.New()

	sessions, err := session.NewStore(cfg, repo)
	if err != nil {
		return fmt.Errorf("initialise session store: %w", err)
	}
	if closer, ok := sessions.(io.Closer); ok {
		defer closer.Close()
	}
	if _, ok := sessions.(*session.DatabaseStore); ok {
		scheduler, err := session.StartCleanup(sessions, cfg.SessionCleanupSchedule, m)
		if err != nil {
			return fmt.Errorf("schedule session cleanup: %w", err)
		}
		defer scheduler.Stop()
	}

	deps := api.Dependencies{Repo: repo, Storage: store, Sessions: sessions, Metrics: m}
	if cfg.GoogleEnabled() {
		google, err := auth.NewGoogleVerifier(ctx, cfg.GoogleIssuerURL, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			// Google 登录不可用时其余接口照常服务
			logrus.WithError(err).Warn("google sign-in disabled")
		} else {
			deps.Google = google
		}
	}

	httpHandler, err := api.NewHTTPHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("initialise http handler: %w", err)
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:              serverHost,
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"host": serverHost, "env": cfg.AppEnv}).Info("服务器启动")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
