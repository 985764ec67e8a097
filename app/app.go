package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/leshachaplin/tracklog/app/waiter"
	"github.com/leshachaplin/tracklog/internal/capture"
	"github.com/leshachaplin/tracklog/internal/collector"
	"github.com/leshachaplin/tracklog/internal/config"
	"github.com/leshachaplin/tracklog/internal/exception"
	appServer "github.com/leshachaplin/tracklog/internal/server/http"
	"github.com/leshachaplin/tracklog/internal/sink/redpanda"
	"github.com/leshachaplin/tracklog/internal/storage/kv"
	"github.com/leshachaplin/tracklog/internal/storage/stream"
	"github.com/leshachaplin/tracklog/internal/worker"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = time.Minute
)

type LoadConfigFn func() (config.Config, error)

type App struct {
	cfg      config.Config
	logger   zerolog.Logger
	server   *appServer.Server
	waiter   waiter.Waiter
	ctx      context.Context
	cancelFn context.CancelFunc
}

func New(loadConfigFn LoadConfigFn) *App {
	ctx, cancelFn := context.WithCancel(context.Background())
	cfg, err := loadConfigFn()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	logger := NewZeroLogger(Level(cfg.LogLevel))

	w := waiter.NewWaiter(ctx, cancelFn)

	return &App{
		cfg:      cfg,
		logger:   logger,
		waiter:   w,
		ctx:      w.Context(),
		cancelFn: w.CancelFunc(),
	}
}

func (a *App) Start() {
	defer a.cancelFn()

	substrate, err := kv.Open(a.ctx, a.cfg.Storage)
	if err != nil {
		a.logger.Fatal().Err(err).Msg("Could not open stream storage.")
	}
	defer substrate.Close()

	store := stream.New(substrate, a.logger.With().Str("COMPONENT", "STREAM").Logger())

	l := a.logger.With().Str("COMPONENT", "COLLECTOR").Logger()
	sender, err := collector.NewHTTPSender(a.cfg.Collector, l)
	if err != nil {
		a.logger.Fatal().Err(err).Msg("Could not setup collector sender.")
	}

	deliveryPool := worker.New(a.ctx, a.cfg.Delivery, a.logger.With().Str("WORKER", "DELIVERY").Logger())
	client := collector.New(a.cfg.Collector, store, sender, deliveryPool, l)

	hub := capture.NewHub()
	capture.New(a.ctx, client, a.logger.With().Str("COMPONENT", "CAPTURE").Logger()).Enable(hub, hub)

	sinks := exception.MultiSink{
		exception.NewStreamSink(client, a.logger),
	}
	if a.cfg.ExceptionSink.Enabled() {
		producer, err := redpanda.NewProducer(
			a.ctx,
			a.cfg.ExceptionSink.Config,
			a.logger.With().Str("COMPONENT", "EXCEPTION_SINK").Logger(),
		)
		if err != nil {
			a.logger.Fatal().Err(err).Msg("Could not setup exception producer.")
		}
		defer producer.Close()
		sinks = append(sinks, producer)
	}
	reporter := exception.Wrap(exception.LogReporter{Logger: a.logger}, sinks, a.cfg.Exception)

	handler := appServer.NewHandler(hub, client, reporter, a.logger)
	a.server = appServer.New(handler)

	a.waitForServer()
	a.waitForFlusher(client)
	a.waitForWorker(deliveryPool)

	if err = a.waiter.Wait(); err != nil {
		a.logger.Fatal().Err(err).Msg("App crash.")
	}
}

func (a *App) Stop() {
	a.cancelFn()
}

func (a *App) waitForServer() {
	a.waiter.Add(func(ctx context.Context) error {
		defer a.logger.Debug().Msg("server has been shutdown")

		group, gCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			defer a.logger.Debug().Msg("public server exited")
			a.logger.Info().Str("starting server at: ", a.cfg.Addr).Send()
			err := a.server.ServePublic(a.cfg.Addr)
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		group.Go(func() error {
			<-gCtx.Done()
			a.logger.Debug().Msg("shutting down the server")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := a.server.ShutdownPublic(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("error while shutting down the server")
			}
			return nil
		})

		return group.Wait()
	})
}

func (a *App) waitForFlusher(client *collector.Client) {
	a.waiter.Add(func(ctx context.Context) error {
		defer a.logger.Debug().Msg("flush timer stopped")
		client.Run(ctx)
		return nil
	})
}

func (a *App) waitForWorker(pool worker.WorkerPool) {
	a.waiter.Add(func(ctx context.Context) error {
		group, gCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			<-gCtx.Done()
			pool.GracefulStop()
			return nil
		})
		return group.Wait()
	})
}
