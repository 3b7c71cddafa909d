package server

import (
	"time"

	"github.com/dilitS/travel-conductor-ai-sub000/internal/auth"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/config"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/feed"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/guide"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/storage"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/stream"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	feedTTL := time.Duration(s.Cfg.FeedCacheTTLSec) * time.Second

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	trip.RegisterRoutes(s.App.Group("/trips"), trip.NewService(s.DB), jwtMiddleware)
	guide.RegisterRoutes(s.App.Group("/guide"), guide.NewStore(s.DB), s.Stream, jwtMiddleware)
	feed.RegisterRoutes(s.App.Group("/feed"), feed.NewService(s.DB, s.Redis, feedTTL), jwtMiddleware)
	storage.RegisterRoutes(s.App.Group("/media"), storage.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
