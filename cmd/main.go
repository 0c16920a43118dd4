package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/broker"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/cache"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/config"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/directory"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/handler"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/naming"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/notification"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/repository"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/service"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/database"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/jwt"
	pkglog "github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "chat-service",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate. The users table belongs to the user service; it is
	// migrated here too so a standalone deployment works out of the box.
	if err := database.AutoMigrate(db,
		&domain.RoomModel{},
		&domain.ParticipantModel{},
		&domain.MessageModel{},
		&notification.NotificationModel{},
		&directory.UserModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	roomRepo := repository.NewGormRoomRepository(db)
	participantRepo := repository.NewGormParticipantRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	dir := directory.NewGormDirectory(db)

	// Initialize Redis room cache
	roomCache, err := cache.NewRedisRoomCache(cfg.Redis, cfg.Cache.RoomPrefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer roomCache.Close()
	logger.Info().Msg("redis cache connected")

	// Initialize Kafka publisher
	publisher, err := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Partitions)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create kafka publisher")
	}
	defer publisher.Close()
	logger.Info().Str("brokers", cfg.Kafka.Brokers).Msg("kafka publisher connected")

	// Initialize notification dispatcher and naming resolver
	dispatcher := notification.NewGormDispatcher(db)
	resolver := naming.NewResolver(participantRepo, dir)

	// Initialize service
	chatService := service.NewChatService(
		roomRepo,
		participantRepo,
		messageRepo,
		dir,
		resolver,
		dispatcher,
		publisher,
		roomCache,
		time.Duration(cfg.Cache.RoomTTL)*time.Second,
	)

	// Initialize auth middleware
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenDuration)*time.Hour, cfg.Auth.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(chatService, dispatcher, authMiddleware)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Register routes
	httpHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("chat-service starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
