package server

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"FeeCast/internal/scheduler"
	"FeeCast/pkg/cache"
	pkgch "FeeCast/pkg/clickhouse"
	"FeeCast/pkg/config"
	xhttp "FeeCast/pkg/http"
	pkgkafka "FeeCast/pkg/kafka"
	applogger "FeeCast/pkg/logger"
)

// Infra holds the optional backends the app owns and must close. Nil fields
// are backends that are disabled in config.
type Infra struct {
	Cache      cache.Service
	ClickHouse *pkgch.Client
	Producer   *pkgkafka.Producer
	Consumer   *pkgkafka.Consumer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
	infra      Infra
}

func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, sched *scheduler.Scheduler, infra Infra) *App {
	return &App{cfg: cfg, l: l, httpServer: srv, scheduler: sched, infra: infra}
}

// Run starts every component and blocks until SIGINT/SIGTERM or a fatal
// listen error, then shuts down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.infra.Consumer != nil {
		if err := a.infra.Consumer.Start(ctx); err != nil {
			return err
		}
	}

	if err := a.scheduler.RegisterAll(a.cfg.Forecast.RefreshCron); err != nil {
		return err
	}
	a.scheduler.Start()
	go a.scheduler.RunRefreshNow()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
	}
	stop()

	return errors.Join(runErr, a.shutdown())
}

// shutdown stops inbound traffic first, then jobs and consumers, then closes backends.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	a.scheduler.Stop(ctx)

	if a.infra.Consumer != nil {
		if err := a.infra.Consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.infra.Producer != nil {
		if err := a.infra.Producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.infra.ClickHouse != nil {
		if err := a.infra.ClickHouse.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.infra.Cache != nil {
		if err := a.infra.Cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) shutdownTimeout() time.Duration {
	if d := a.cfg.Server.ShutdownTimeout; d > 0 {
		return d
	}
	return 10 * time.Second
}
