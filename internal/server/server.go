package server

import (
	"context"
	"fmt"
	"time"

	"backend-fieldops/internal/apierror"
	"backend-fieldops/internal/attendance"
	"backend-fieldops/internal/auth"
	"backend-fieldops/internal/config"
	"backend-fieldops/internal/db"
	"backend-fieldops/internal/events"
	"backend-fieldops/internal/logger"
	"backend-fieldops/internal/report"
	"backend-fieldops/internal/routing"
	"backend-fieldops/internal/stream"
	"backend-fieldops/internal/visit"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Services Services
}

// Services is the domain layer shared by the HTTP server and fieldctl.
type Services struct {
	Records    *attendance.Store
	Attendance *attendance.Service
	Visits     *visit.Service
	Reports    *report.Service
}

// BuildServices wires the domain services over one database handle.
func BuildServices(cfg config.Config, q db.Querier, rdb *redis.Client, notifier attendance.Notifier, publisher events.Publisher) (Services, error) {
	router, err := routing.New(cfg, rdb)
	if err != nil {
		return Services{}, fmt.Errorf("routing: %w", err)
	}
	loc := cfg.Location()

	records := attendance.NewStore(q)
	visits := visit.NewService(q, publisher, notifier, cfg.VisitMaxDistanceKm)
	acc := attendance.NewAccumulator(router, cfg.RoutingMaxConcurrency, cfg.RoutingLegTimeout)

	return Services{
		Records:    records,
		Attendance: attendance.NewService(records, visits, acc, notifier, publisher, loc),
		Visits:     visits,
		Reports:    report.NewService(records, visits, loc),
	}, nil
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client, publisher events.Publisher) (*Server, error) {
	app := fiber.New(fiber.Config{ErrorHandler: apierror.ErrorHandler})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestContext)
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))

	hub := stream.NewHub(redisClient)

	var q db.Querier
	if pg != nil {
		q = pg
	}
	services, err := BuildServices(cfg, q, redisClient, hub, publisher)
	if err != nil {
		_ = hub.Close()
		return nil, err
	}

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       pg,
		Redis:    redisClient,
		Stream:   hub,
		Services: services,
	}
	registerRoutes(s)
	return s, nil
}

func registerRoutes(s *Server) {
	s.App.Get("/health", s.health)

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	attendance.RegisterRoutes(s.App.Group("/attendance"), s.Services.Attendance, jwtMiddleware)
	visit.RegisterRoutes(s.App.Group("/visits"), s.Services.Visits, jwtMiddleware)
	report.RegisterRoutes(s.App.Group("/reports"), s.Services.Reports, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	pgUp := s.DB != nil && s.DB.Ping(ctx) == nil
	redisUp := db.RedisHealthy(ctx, s.Redis)

	status := "ok"
	if !pgUp {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":   status,
		"postgres": upDown(pgUp),
		"redis":    upDown(redisUp),
	})
}

// Close releases what the server owns. The pool and redis client belong to the caller.
func (s *Server) Close() error {
	return s.Stream.Close()
}

// requestContext copies the request id into the user context for logging.
func requestContext(c *fiber.Ctx) error {
	id, _ := c.Locals("requestid").(string)
	c.SetUserContext(logger.WithRequestID(c.UserContext(), id))
	return c.Next()
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
