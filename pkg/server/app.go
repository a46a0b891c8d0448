package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	drepo "PerpScout/internal/domain/repository"
	"PerpScout/internal/usecase"
	"PerpScout/pkg/config"
	xhttp "PerpScout/pkg/http"
	pkgkafka "PerpScout/pkg/kafka"
	applogger "PerpScout/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	scans      *usecase.ScanService
	auto       *usecase.AutoScanner
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	stream     drepo.MarkPriceStream
	closers    []io.Closer
}

// Option attaches optional parts to the App.
type Option func(*App)

// WithConsumer starts c with handler h on Run.
func WithConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.kh = h
	}
}

// WithMarkPriceStream keeps s connected while the app runs.
func WithMarkPriceStream(s drepo.MarkPriceStream) Option {
	return func(a *App) { a.stream = s }
}

// WithClosers registers resources released on shutdown, in order.
func WithClosers(cs ...io.Closer) Option {
	return func(a *App) { a.closers = append(a.closers, cs...) }
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	scans *usecase.ScanService,
	auto *usecase.AutoScanner,
	opts ...Option,
) *App {
	a := &App{
		cfg:        cfg,
		logger:     logger.With("app"),
		httpServer: httpServer,
		scans:      scans,
		auto:       auto,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scans exposes the guarded scan runner for one-shot use.
func (a *App) Scans() *usecase.ScanService { return a.scans }

// Run starts every component and blocks until ctx is done or the process is interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.stream != nil {
		go func() {
			if err := a.stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("markprice stream stopped", applogger.Error(err))
			}
		}()
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.logger.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		return err
	}

	if a.cfg.AutoScan.Enabled {
		if err := a.auto.Start(ctx); err != nil {
			a.logger.Warn("auto-scan not started", applogger.Error(err))
		}
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.auto.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.stream != nil {
		_ = a.stream.Close()
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// Close releases the registered infrastructure clients.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
