package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	v1 "crm-chat/cmd/api/router/v1"
	"crm-chat/internal/config"
	"crm-chat/internal/identity"
	cacheAdapter "crm-chat/internal/infrastructure/cache/adapter"
	"crm-chat/internal/infrastructure/database"
	queueAdapter "crm-chat/internal/infrastructure/queue/adapter"
	"crm-chat/internal/infrastructure/realtime"
	"crm-chat/internal/pkg/chat/application/task"
	repoAdapter "crm-chat/internal/pkg/chat/persistence/repository/adapter"
	chatHTTP "crm-chat/internal/pkg/chat/presentation/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	cache, err := cacheAdapter.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}
	defer cache.Close()

	queueClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("create queue client")
	}
	defer queueClient.Close()

	queueServer, err := queueAdapter.NewAsynqServer(cfg.RedisURL, cfg.QueueConcurrency, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create queue server")
	}

	// The realtime gateway is owned here and passed down explicitly; no
	// component discovers it through package state.
	router := realtime.NewRouter()
	defer router.Close()

	resolver := identity.NewJWTResolver(cfg.JWTSecret)
	codes := identity.NewCodeStore(cache, time.Duration(cfg.LoginCodeTTL)*time.Second)
	identityHandler := identity.NewHandler(codes, resolver, log)

	store := repoAdapter.NewPgConversationStore(pool)
	task.RegisterDeleteConversationTask(queueServer, store, log)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := queueServer.Run(runCtx); err != nil {
			log.Error().Err(err).Msg("queue server stopped")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	identityHandler.RegisterRoutes(r.Group("/api/v1/auth"))

	v1.RegisterRoutes(r, resolver, chatHTTP.Deps{
		Pool:       pool,
		Queue:      queueClient,
		Router:     router,
		SendBuffer: cfg.SendBuffer,
		ReadLimit:  int64(cfg.ReadLimit),
		Log:        log,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-runCtx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	_ = queueServer.Stop(shutdownCtx)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.LogConsole {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
