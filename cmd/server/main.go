package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mistcall/strangerchat/internal/bus"
	"github.com/mistcall/strangerchat/internal/config"
	"github.com/mistcall/strangerchat/internal/health"
	"github.com/mistcall/strangerchat/internal/logging"
	"github.com/mistcall/strangerchat/internal/middleware"
	"github.com/mistcall/strangerchat/internal/ratelimit"
	"github.com/mistcall/strangerchat/internal/router"
	"github.com/mistcall/strangerchat/internal/transport"
	"github.com/mistcall/strangerchat/internal/upload"
	"go.uber.org/zap"
)

func main() {
	envPaths := []string{".env", "../../.env", "../../../.env"}
	var envLoaded bool
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			envLoaded = true
			break
		}
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		panic(err)
	}

	if err := logging.Initialize(cfg.DevelopmentMode); err != nil {
		panic(err)
	}
	ctx := context.Background()

	if !envLoaded {
		logging.Warn(ctx, "no .env file found in any expected location, relying on environment variables")
	}

	var busService *bus.Service
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		busService, err = bus.NewService(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logging.Fatal(ctx, "failed to connect to redis", zap.Error(err))
		}
		redisClient = busService.Client()
		defer busService.Close()
	}

	rateLimiter, err := ratelimit.NewRateLimiter(cfg, redisClient)
	if err != nil {
		logging.Fatal(ctx, "failed to create rate limiter", zap.Error(err))
	}

	uploadStore, err := upload.NewStore(cfg.UploadDir, "/uploads", cfg.MaxUploadBytes, cfg.AllowedUploadMIME)
	if err != nil {
		logging.Fatal(ctx, "failed to initialize upload store", zap.Error(err))
	}

	hub := transport.NewHub(cfg.AllowedOrigins)
	roomGrace := time.Duration(cfg.RoomCleanupGraceSeconds) * time.Second
	rt := router.New(hub, busService, roomGrace)
	rt.RegisterHandlers()

	healthHandler := health.NewHandler(busService)

	if !cfg.DevelopmentMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())

	corsCfg := cors.DefaultConfig()
	if cfg.AllowedOrigins != "" {
		corsCfg.AllowOrigins = splitCSV(cfg.AllowedOrigins)
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.Use(rateLimiter.GlobalMiddleware())

	r.GET("/health", healthHandler.Liveness)
	r.GET("/health/ready", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws", func(c *gin.Context) {
		if !rateLimiter.CheckWebSocket(c) {
			return
		}
		hub.ServeWS(c)
	})

	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("")
	api.Use(rateLimiter.MiddlewareForEndpoint("api"))
	{
		api.GET("/stats", rt.StatsHandler)
		api.GET("/debug", rt.DebugHandler)
		api.GET("/debug/connections", rt.DebugConnectionsHandler)
		api.GET("/debug/user/:id", rt.DebugUserHandler)
		api.GET("/messages/:room", rt.MessagesHandler)
		api.POST("/messages/edit", rt.HTTPEditMessageHandler)
		api.POST("/messages/delete", rt.HTTPDeleteMessageHandler)
	}

	uploadGroup := r.Group("")
	uploadGroup.Use(rateLimiter.MiddlewareForEndpoint("public"))
	uploadGroup.POST("/upload", func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		result, err := uploadStore.Save(c.Request.Context(), header)
		if err != nil {
			switch err {
			case upload.ErrTooLarge:
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			case upload.ErrDisallowedMIME:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name": result.Name,
			"url":  result.URL,
			"mime": result.MIME,
			"size": result.Size,
		})
	})

	port := cfg.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logging.Info(ctx, "server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal(ctx, "server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server forced to shutdown", zap.Error(err))
	}

	logging.Info(ctx, "server exited")
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
