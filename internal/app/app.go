package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradewizard_backend/database"
	"tradewizard_backend/internal/auth"
	"tradewizard_backend/internal/cache"
	"tradewizard_backend/internal/config"
	"tradewizard_backend/internal/email"
	"tradewizard_backend/internal/gateway"
	"tradewizard_backend/internal/handlers"
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/middleware"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/internal/routes"
	"tradewizard_backend/internal/services"
	"tradewizard_backend/internal/validator"
	"tradewizard_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	auth.Init(cfg.JWT.Secret, cfg.JWT.TTL)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("failed to seed first admin user", "error", err)
	}

	supervisor := workers.NewSupervisor()
	ginRouter := SetupRouter(cfg, gormDB, supervisor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriptionWorker := workers.NewSubscriptionWorker(gormDB, repositories.NewNotificationRepository(gormDB))
	if err := subscriptionWorker.Start(ctx); err != nil {
		logger.Fatal("failed to start subscription worker", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, supervisor *workers.Supervisor) *gin.Engine {
	serviceContainer := initializeServices(cfg, gormDB, supervisor)

	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	appHandlers := initializeHandlers(baseHandler, serviceContainer)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, baseHandler)

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, supervisor *workers.Supervisor) *services.ServiceContainer {
	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" && cfg.Server.Env == "production" {
		emailProvider = email.NewSMTPProvider(cfg)
	} else {
		logger.Warn("smtp not configured for this environment, using mock email provider")
		emailProvider = &email.MockProvider{}
	}

	robotCache := cache.NewRobotCache(cfg.Redis.URL, time.Duration(cfg.Redis.CacheTTL)*time.Second)

	mpesaClient := gateway.NewMpesaClient(cfg.Mpesa)
	cardClient := gateway.NewCardClient()

	userRepo := repositories.NewUserRepository(gormDB)
	robotRepo := repositories.NewRobotRepository(gormDB)
	robotRequestRepo := repositories.NewRobotRequestRepository(gormDB)
	transactionRepo := repositories.NewTransactionRepository(gormDB)
	planRepo := repositories.NewSubscriptionPlanRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	chatRepo := repositories.NewChatRepository(gormDB)

	authService := services.NewAuthService(userRepo, emailProvider)
	userService := services.NewUserService(userRepo)
	robotService := services.NewRobotService(robotRepo, robotCache)
	robotRequestService := services.NewRobotRequestService(robotRequestRepo, notificationRepo)
	paymentService := services.NewPaymentService(
		transactionRepo,
		robotRepo,
		planRepo,
		userRepo,
		notificationRepo,
		mpesaClient,
		cardClient,
		emailProvider,
		supervisor,
		cfg.Payments,
	)
	subscriptionService := services.NewSubscriptionService(planRepo, transactionRepo, paymentService)
	notificationService := services.NewNotificationService(notificationRepo)
	chatService := services.NewChatService(chatRepo, notificationRepo)

	return &services.ServiceContainer{
		AuthService:         authService,
		UserService:         userService,
		RobotService:        robotService,
		RobotRequestService: robotRequestService,
		PaymentService:      paymentService,
		SubscriptionService: subscriptionService,
		NotificationService: notificationService,
		ChatService:         chatService,
		EmailProvider:       emailProvider,
	}
}

func initializeHandlers(baseHandler *handlers.BaseHandler, services *services.ServiceContainer) *handlers.AppHandlers {
	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:         handlers.NewUserHandler(baseHandler, services.UserService),
		RobotHandler:        handlers.NewRobotHandler(baseHandler, services.RobotService),
		RobotRequestHandler: handlers.NewRobotRequestHandler(baseHandler, services.RobotRequestService),
		PaymentHandler:      handlers.NewPaymentHandler(baseHandler, services.PaymentService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		ChatHandler:         handlers.NewChatHandler(baseHandler, services.ChatService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin makes sure at least one admin account exists, taking the
// credentials from configuration. Without it nobody could manage the catalog.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("first admin credentials not set, skipping admin seeding")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("admin user already exists, skipping creation", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Name:         "Platform Admin",
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("created first admin user", "email", adminEmail)
	return nil
}
