package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/learnflow-api/internal/app"
	"github.com/yukikurage/learnflow-api/internal/auth"
	"github.com/yukikurage/learnflow-api/internal/config"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/handlers"
	"github.com/yukikurage/learnflow-api/internal/jobs"
	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/metrics"
	"github.com/yukikurage/learnflow-api/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Dir: cfg.LogDir}); err != nil {
		logger.Fatal("failed to initialise logger", "err", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", "err", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", "err", err)
	}
	db := database.GetDB()
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database handle", "err", err)
	}

	// Sessions and token revocation live in Redis when it is configured
	var (
		store    sessions.Store
		denylist auth.Denylist
	)
	if cfg.RedisEnabled() {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("failed to connect to redis", "addr", redisAddr, "err", err)
		}
		defer rdb.Close()
		denylist = auth.NewRedisDenylist(rdb)

		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret), // authentication key
		)
		if err != nil {
			logger.Fatal("failed to create redis session store", "err", err)
		}
		store = rs
	} else {
		logger.Warn("REDIS_HOST not set, keeping sessions in cookies and revocations in memory")
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/api/v1/auth",
		MaxAge:   app.SessionMaxAge(cfg),
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: http.SameSiteLaxMode,
	})

	svc := app.NewServices(db, cfg, denylist, nil)

	// Initialize Gin router
	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORSOrigins),
		sessions.Sessions(constants.SessionCookieName, store),
	)
	r.MaxMultipartMemory = constants.MaxUploadSize

	r.GET("/health", handlers.NewHealthHandler(sqlDB).Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	handlers.RegisterRoutes(r.Group("/api/v1"), handlers.Handlers{
		Auth:      handlers.NewAuthHandler(svc.Auth, svc.Analytics),
		Goal:      handlers.NewGoalHandler(svc.Goals),
		Resource:  handlers.NewResourceHandler(svc.Resources),
		Activity:  handlers.NewActivityHandler(svc.Activities),
		Reminder:  handlers.NewReminderHandler(svc.Reminders, svc.Notifications),
		Analytics: handlers.NewAnalyticsHandler(svc.Analytics, svc.Reports),
	}, svc.Auth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background jobs
	scheduler := jobs.New(jobs.SystemClock{}, time.Second)
	jobs.Register(scheduler, jobs.Config{
		ReminderInterval:  cfg.ReminderInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		DigestHour:        cfg.DigestHour,
		Location:          time.UTC,
	}, svc.Reminders, svc.Reminders, sqlDB)
	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(schedulerDone)
	}()

	// Start server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	<-schedulerDone
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close database", "err", err)
	}
	logger.Info("server stopped")
}
