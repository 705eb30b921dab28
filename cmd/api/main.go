package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-fieldops/internal/config"
	"backend-fieldops/internal/db"
	"backend-fieldops/internal/events"
	"backend-fieldops/internal/logger"
	"backend-fieldops/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	ensureSchema    func(context.Context, db.Querier) error
	connectRedis    func(config.Config) *redis.Client
	connectEvents   func(config.Config) (events.Publisher, func() error, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, events.Publisher, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		ensureSchema:    db.EnsureSchema,
		connectRedis:    db.ConnectRedis,
		connectEvents:   connectEvents,
		notify:          signal.Notify,
		run:             Run,
	}
}

func connectEvents(cfg config.Config) (events.Publisher, func() error, error) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, func() error { return nil }, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsExchange)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func setupLogger(cfg config.Config) {
	logger.SetDefault(logger.NewSlogLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stdout,
	}))
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	setupLogger(cfg)
	log := logger.Default()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Error("postgres connection failed", logger.Err(err))
		pg = nil
	}
	if pg != nil {
		if err := deps.ensureSchema(context.Background(), pg); err != nil {
			log.Error("schema bootstrap failed", logger.Err(err))
		}
	}

	rdb := deps.connectRedis(cfg)

	publisher, closeEvents, err := deps.connectEvents(cfg)
	if err != nil {
		log.Warn("event bus unavailable, events disabled", logger.Err(err))
		publisher, closeEvents = events.Nop{}, func() error { return nil }
	}
	defer func() { _ = closeEvents() }()

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, publisher, signals, nil); err != nil {
		log.Error("server exited with error", logger.Err(err))
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, publisher events.Publisher, signals <-chan os.Signal, listen ListenFunc) error {
	srv, err := server.NewServer(cfg, pg, rdb, publisher)
	if err != nil {
		return err
	}

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = srv.Close()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	_ = srv.Close()
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
