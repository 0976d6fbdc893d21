package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Danielopol/Metrosocial/internal/config"
	"github.com/Danielopol/Metrosocial/internal/feed"
	"github.com/Danielopol/Metrosocial/internal/identity"
	"github.com/Danielopol/Metrosocial/internal/location"
	"github.com/Danielopol/Metrosocial/internal/presence"
	"github.com/Danielopol/Metrosocial/internal/stream"
)

type Server struct {
	App       *fiber.App
	Cfg       config.Config
	Redis     *redis.Client
	Stream    *stream.Hub
	Posts     *feed.Store
	Presence  *presence.Registry
	Locations *location.Tracker
}

func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	registry := presence.NewRegistry()

	s := &Server{
		App:       app,
		Cfg:       cfg,
		Redis:     redisClient,
		Stream:    hub,
		Posts:     feed.NewStore(hub, cfg.MaxPosts),
		Presence:  registry,
		Locations: location.NewTracker(registry),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := identity.JWTMiddleware(s.Cfg.JWTSecret)

	presence.RegisterRoutes(s.App.Group("/api/users"), s.Presence, jwtMiddleware)
	location.RegisterRoutes(s.App.Group("/api/location"), s.Locations, jwtMiddleware, s.Cfg.NearbyRadiusM)
	feed.RegisterRoutes(s.App.Group("/api/posts"), s.Posts, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
