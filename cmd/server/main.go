package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/luanafs/clube/internal/api"
	"github.com/luanafs/clube/internal/config"
	"github.com/luanafs/clube/internal/db"
	"github.com/luanafs/clube/internal/engine"
	"github.com/luanafs/clube/internal/events"
	"github.com/luanafs/clube/internal/middleware"
	"github.com/luanafs/clube/internal/observ"
	"github.com/luanafs/clube/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no request deadline; Background is the right root here.
	ctx := context.Background()

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	// Event fan-out is optional: without Redis the engine runs with a
	// no-op publisher and everything else works.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisURL != "" {
		redisPub, err := events.NewRedisPublisher(ctx, cfg.RedisURL, cfg.EventChannel, logger)
		if err != nil {
			logger.Warn("redis unavailable, events disabled", zap.Error(err))
		} else {
			defer redisPub.Close()
			publisher = redisPub
		}
	}

	pool := database.Pool()
	txRunner := postgres.NewTxRunner(pool, logger)
	eng := engine.New(txRunner, publisher, logger)

	// Auth reads users outside any workflow transaction; it gets a
	// pool-bound store directly.
	userStore := postgres.NewUserStore(pool)

	authHandler := api.NewAuthHandler(userStore, cfg.JWTSecret, logger)
	groupHandler := api.NewGroupHandler(eng, logger)
	inviteHandler := api.NewInviteHandler(eng, logger)
	bomHandler := api.NewBookOfMonthHandler(eng, logger)
	clubBookHandler := api.NewClubBookHandler(eng, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	// Public routes: health for load balancers, auth to mint tokens,
	// invite lookup so a link resolves before login.
	srv.GET("/v1/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})
	srv.POST("/v1/auth/signup", authHandler.Signup)
	srv.POST("/v1/auth/login", authHandler.Login)
	srv.GET("/v1/invites/:inviteId", inviteHandler.Lookup)

	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	v1.POST("/groups", groupHandler.Create)
	v1.GET("/groups", groupHandler.List)
	v1.GET("/groups/:id", groupHandler.Get)
	v1.GET("/groups/:id/me", groupHandler.Standing)
	v1.POST("/groups/:id/join", groupHandler.Join)
	v1.POST("/groups/:id/leave", groupHandler.Leave)
	v1.GET("/groups/:id/members", groupHandler.ListMembers)
	v1.PUT("/groups/:id/members/:userId/role", groupHandler.ChangeRole)
	v1.DELETE("/groups/:id/members/:userId", groupHandler.RemoveMember)
	v1.GET("/groups/:id/requests", groupHandler.ListRequests)
	v1.POST("/groups/:id/requests/:requestId/approve", groupHandler.ApproveRequest)
	v1.POST("/groups/:id/requests/:requestId/deny", groupHandler.DenyRequest)

	v1.POST("/groups/:id/invite", inviteHandler.Create)
	v1.POST("/groups/:id/invite/rotate", inviteHandler.Rotate)
	v1.POST("/invites/:inviteId/revoke", inviteHandler.Revoke)
	v1.POST("/invites/:inviteId/accept", inviteHandler.Accept)
	v1.POST("/invites/:inviteId/decline", inviteHandler.Decline)

	v1.POST("/groups/:id/book-of-month", bomHandler.Set)
	v1.GET("/groups/:id/book-of-month", bomHandler.Get)

	v1.POST("/club-books", clubBookHandler.Create)
	v1.GET("/club-books", clubBookHandler.List)
	v1.GET("/club-books/active", clubBookHandler.Active)
	v1.POST("/club-books/:id/activate", clubBookHandler.Activate)
	v1.POST("/club-books/:id/deactivate", clubBookHandler.Deactivate)
	v1.POST("/club-books/:id/messages", clubBookHandler.PostMessage)
	v1.GET("/club-books/:id/messages", clubBookHandler.ListMessages)
	v1.POST("/club-books/:id/artifacts", clubBookHandler.AddArtifact)
	v1.GET("/club-books/:id/artifacts", clubBookHandler.ListArtifacts)

	logger.Info("starting clube",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
