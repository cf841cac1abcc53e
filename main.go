package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"mindwell-service/internal/auth"
	"mindwell-service/internal/db"
	"mindwell-service/internal/handlers"
	"mindwell-service/internal/logging"
	"mindwell-service/internal/middleware"
	"mindwell-service/internal/observability"
	"mindwell-service/internal/rabbitmq"
	"mindwell-service/internal/repositories"
	"mindwell-service/internal/telemetry"
	"mindwell-service/internal/ws"
)

const serviceName = "mindwell-service"

func main() {
	_ = godotenv.Load()
	log := logging.New()
	defer log.Sync()

	shutdownTracing, err := telemetry.InitTracing(context.Background(), serviceName, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalw("failed to init tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(log)
	if err != nil {
		log.Fatalw("failed to connect to db", "error", err)
	}

	amqpURL := os.Getenv("AMQP_URL")
	exchange := getEnv("AMQP_EXCHANGE", "mindwell.events")
	publisher := rabbitmq.NewPublisher(log, amqpURL, exchange)
	defer publisher.Close()

	if amqpURL != "" {
		if obsPublisher, err := observability.NewAMQPPublisher(amqpURL, exchange); err != nil {
			log.Warnw("ws event publisher disabled", "error", err)
		} else {
			observability.SetPublisher(obsPublisher)
			defer obsPublisher.Close()
		}
	}

	audit := telemetry.NewAuditEmitter(log, publisher, "audit.mindwell", serviceName, getEnv("ENVIRONMENT", "development"))

	tokens := auth.NewTokenManager(getEnv("JWT_SECRET", "dev-secret-change-me"), 24*time.Hour)

	userRepo := repositories.NewUserRepo(database)
	moodRepo := repositories.NewMoodRepo(database)
	sessionRepo := repositories.NewSessionRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	achievementRepo := repositories.NewAchievementRepo(database)
	crisisRepo := repositories.NewCrisisRepo(database)

	hub := ws.NewHub(log, ws.ParseScope(getEnv("WS_BROADCAST_SCOPE", "global")))
	relay := ws.NewRelayHandler(log, hub, sessionRepo, messageRepo, tokens)

	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit)
	moodHandler := handlers.NewMoodHandler(moodRepo, userRepo, achievementRepo, crisisRepo, audit)
	chatHandler := handlers.NewChatHandler(sessionRepo, messageRepo)
	achievementHandler := handlers.NewAchievementHandler(achievementRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(tokens)

	api := router.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/user", authMiddleware, authHandler.Me)

	api.POST("/mood", authMiddleware, moodHandler.CreateEntry)
	api.GET("/mood/history", authMiddleware, moodHandler.History)
	api.GET("/mood/today", authMiddleware, moodHandler.Today)

	api.POST("/chat/session", authMiddleware, chatHandler.StartSession)
	api.POST("/chat/session/:session_id/end", authMiddleware, chatHandler.EndSession)
	api.GET("/chat/messages/:session_id", authMiddleware, chatHandler.GetMessages)

	api.GET("/achievements", authMiddleware, achievementHandler.List)

	router.GET("/ws", relay.Handle)

	port := getEnv("PORT", "8080")
	log.Infow("starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalw("server error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
