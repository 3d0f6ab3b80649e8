package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"imobdesk/server/config"
	"imobdesk/server/internal/agenda"
	"imobdesk/server/internal/api"
	"imobdesk/server/internal/database"
	"imobdesk/server/internal/events"
	"imobdesk/server/internal/feed"
	"imobdesk/server/internal/intake"
	"imobdesk/server/internal/leadstore"
	"imobdesk/server/internal/scheduler"
	"imobdesk/server/internal/whatsapp"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.DatabasePath)
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Change feed: repositories publish, the stores and the broker
	// forwarder subscribe
	leadFeed := feed.NewLeadFeed(1000, logger)
	db.SetFeed(leadFeed)

	stores := leadstore.NewManager(db, logger)
	leadFeed.Subscribe(stores.HandleFeedEvent)

	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to message broker")
		}
		defer publisher.Close()
		leadFeed.Subscribe(publisher.HandleFeedEvent)
		logger.Info("Lead event publishing enabled")
	}
	leadFeed.Start()
	defer leadFeed.Close()

	// The intake processor upserts batches through gorm against the
	// same database file
	gormDB, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open intake database handle")
	}

	processor := intake.NewBatchProcessor(gormDB, leadFeed, cfg, logger)
	processor.Start()
	defer processor.Stop()

	agendaService := agenda.NewService(cfg.AgendaWebhookURL, db, logger)
	whatsappService := whatsapp.NewService(cfg.WhatsAppBaseURL, cfg.WhatsAppAPIKey, logger)

	sched := scheduler.NewScheduler(db, agendaService, whatsappService, logger)
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(db, cfg, logger, stores, processor, agendaService, whatsappService)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	api.SetupRoutes(router, handler, cfg.JWTSecret)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
