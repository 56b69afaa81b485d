package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/config"
	authservice "github.com/casadecor/portfolio-backend/internal/auth/service"
	"github.com/casadecor/portfolio-backend/internal/bootstrap"
	"github.com/casadecor/portfolio-backend/internal/catalog/cron"
	"github.com/casadecor/portfolio-backend/internal/catalog/images"
	"github.com/casadecor/portfolio-backend/internal/catalog/localstore"
	"github.com/casadecor/portfolio-backend/internal/catalog/remote"
	"github.com/casadecor/portfolio-backend/internal/catalog/repository"
	"github.com/casadecor/portfolio-backend/internal/kv"
)

const serviceName = "portfolio-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kvStore, err := kv.Open(cfg.LocalStore)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open local store")
	}
	local := localstore.New(kvStore)

	remoteStore, err := remote.Select(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize remote backend")
	}
	if remoteStore == nil {
		logrus.Info("no remote backend configured, serving from local store only")
	} else {
		logrus.WithField("backend", remoteStore.Name()).Info("remote backend configured")
	}

	repo := repository.New(remoteStore, local, images.NewResolver(local))
	auth := authservice.NewAuthService(cfg.Auth)
	if !auth.Enabled() {
		logrus.Warn("ADMIN_PASSWORD_HASH is not set, admin routes are disabled")
	}

	sweeper := cron.NewSweeper(local)
	if err := sweeper.Start(""); err != nil {
		logrus.WithError(err).Fatal("failed to schedule orphan image sweep")
	}
	defer sweeper.Stop()

	backend := ""
	if remoteStore != nil {
		backend = remoteStore.Name()
	}
	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  serviceName,
		Version:      cfg.App.Version,
		Backend:      backend,
		AllowOrigins: cfg.Server.AllowOrigins,
		Repo:         repo,
		Auth:         auth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
}
