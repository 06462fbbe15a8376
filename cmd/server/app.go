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

	"github.com/diewo77/go-records/internal/config"
	"github.com/diewo77/go-records/internal/db"
	"github.com/diewo77/go-records/internal/handlers"
	"github.com/diewo77/go-records/internal/logging"
	"github.com/diewo77/go-records/internal/metrics"
	"github.com/diewo77/go-records/internal/services"
	"github.com/diewo77/go-records/view"
	"github.com/diewo77/go-records/web"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds the process-wide dependencies.
type App struct {
	cfg     *config.Config
	log     *logrus.Logger
	logFile io.Closer
	db      *gorm.DB
}

// bootstrap loads configuration, builds the logger and connects the database.
func bootstrap() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	conn, err := db.Connect(cfg.Database, log)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &App{cfg: cfg, log: log, logFile: closer, db: conn}, nil
}

func (a *App) migrate() error {
	if err := db.Migrate(a.db, a.cfg, a.log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (a *App) seed() error {
	if err := db.Seed(a.db); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	return nil
}

// Handler wires services, views and routes.
func (a *App) Handler() http.Handler {
	m := metrics.New()
	obs := services.NewRecorder(a.log, m)
	return handlers.NewRouter(handlers.Deps{
		DB:      a.db,
		Log:     a.log,
		View:    view.New(web.TemplatesFS(), web.StaticFS(), a.cfg.App.Dev),
		Static:  web.StaticFS(),
		Metrics: m,
		Clients: services.NewClientService(a.db, obs),
		People:  services.NewPersonService(a.db, obs),
	})
}

// serve runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      a.Handler(),
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Server starting on port %s (dev=%v)", a.cfg.Server.Port, a.cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
		a.log.Info("Shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("Server stopped gracefully")
	return nil
}

// Close releases the database and the log file.
func (a *App) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logFile.Close()
}
