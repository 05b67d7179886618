package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"procura_backend/internal/auth"
	"procura_backend/internal/config"
	"procura_backend/internal/email"
	"procura_backend/internal/handlers"
	"procura_backend/internal/logger"
	"procura_backend/internal/middleware"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/routes"
	"procura_backend/internal/secop"
	"procura_backend/internal/services"
	"procura_backend/internal/storage"
	"procura_backend/internal/validator"
	"procura_backend/internal/workers"
	"procura_backend/internal/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	auth.Configure(cfg.JWT.Secret, cfg.JWT.TTL)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Tender{},
		&models.Bid{},
		&models.BidAttachment{},
		&models.Notification{},
	); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := SetupRouter(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter assembles the full application: storage, services, handlers,
// the websocket hub and the tender worker. ctx bounds the background pieces.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	store, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	hub := ws.NewHub()
	go hub.Run()

	serviceContainer := initializeServices(cfg, gormDB, store, hub)
	appHandlers := initializeHandlers(serviceContainer)

	worker := workers.NewTenderWorker(
		repositories.NewTenderRepository(gormDB),
		repositories.NewBidRepository(gormDB),
		serviceContainer.NotificationService,
		time.Duration(cfg.Worker.TenderSweepMinutes)*time.Minute,
		time.Duration(cfg.Worker.ClosingSoonHours)*time.Hour,
	)
	worker.Start(ctx)

	router := initializeGinRouter(cfg)
	routes.RegisterRoutes(router, appHandlers, ws.NewHandler(hub))
	return router
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, store storage.Storage, hub *ws.Hub) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository(gormDB)
	tenderRepo := repositories.NewTenderRepository(gormDB)
	bidRepo := repositories.NewBidRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	attachmentRepo := repositories.NewAttachmentRepository(gormDB)

	mailer := email.NewSender(email.Config{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
	})

	secopClient := secop.NewClient(secop.Config{
		BaseURL:  cfg.Secop.BaseURL,
		Resource: cfg.Secop.Resource,
		PageSize: cfg.Secop.PageSize,
		AppToken: cfg.Secop.AppToken,
	})

	notificationService := services.NewNotificationService(notificationRepo, hub)

	return &services.ServiceContainer{
		AuthService:   services.NewAuthService(userRepo, notificationService),
		UserService:   services.NewUserService(userRepo),
		TenderService: services.NewTenderService(tenderRepo, secopClient),
		BidService:    services.NewBidService(bidRepo, tenderRepo, userRepo, notificationService, mailer),
		AttachmentService: services.NewAttachmentService(attachmentRepo, bidRepo, store, services.UploadLimits{
			MaxSize:      cfg.Upload.MaxSize,
			AllowedTypes: cfg.Upload.AllowedTypes,
		}),
		NotificationService: notificationService,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		Auth:         handlers.NewAuthHandler(baseHandler, container.AuthService),
		User:         handlers.NewUserHandler(baseHandler, container.UserService),
		Tender:       handlers.NewTenderHandler(baseHandler, container.TenderService),
		Bid:          handlers.NewBidHandler(baseHandler, container.BidService, container.AttachmentService),
		Notification: handlers.NewNotificationHandler(baseHandler, container.NotificationService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

// seedFirstAdmin creates the bootstrap administrator account when configured
// and absent.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.FirstAdminEmail).First(&existing).Error
	if err == nil {
		logger.Info("Admin user already exists, skipping creation", "email", cfg.FirstAdminEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.FirstAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.FirstAdminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdministrator,
		FullName:     "Platform Administrator",
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("First admin user created", "email", cfg.FirstAdminEmail)
	return nil
}
