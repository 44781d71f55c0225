package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microTaskMarket/app/echo-server/router"
	"microTaskMarket/business/ledger"
	"microTaskMarket/business/notifications"
	"microTaskMarket/business/payments"
	"microTaskMarket/business/submissions"
	"microTaskMarket/business/tasks"
	userService "microTaskMarket/business/user"
	"microTaskMarket/business/withdrawals"
	"microTaskMarket/domain"
	"microTaskMarket/internal/middleware"
	"microTaskMarket/internal/repository/notification"
	psqlRepo "microTaskMarket/internal/repository/postgres"
	redisRepo "microTaskMarket/internal/repository/redis"
	"microTaskMarket/internal/repository/stripe"
	"microTaskMarket/internal/rest"
	"microTaskMarket/pkg/config"
	"microTaskMarket/pkg/database"
	redisdb "microTaskMarket/pkg/database/redis"
	"microTaskMarket/pkg/logger"
	"microTaskMarket/pkg/metrics"
	"microTaskMarket/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Micro Task Market", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	stripeRepo := stripe.NewStripeRepository(
		stripe.StripeConfig{
			StripeApi: cfg.Stripe.StripeSecretKey,
			StripeUrl: cfg.Stripe.StripeUrl,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	ledgerRepo := psqlRepo.NewLedgerRepository(db)
	taskRepo := psqlRepo.NewTaskRepository(db)
	submissionRepo := psqlRepo.NewSubmissionRepository(db)
	withdrawalRepo := psqlRepo.NewWithdrawalRepository(db)
	paymentRepo := psqlRepo.NewPaymentRepository(db)
	notificationRepo := psqlRepo.NewNotificationRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(redisClient, 24*time.Hour)

	// Init service
	userSvc := userService.NewUserService(userRepo, validate, mailjetEmail, tokenRepo, withdrawalRepo, paymentRepo, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	ledgerSvc := ledger.NewLedgerService(ledgerRepo)
	tasksSvc := tasks.NewTasksService(taskRepo)
	submissionsSvc := submissions.NewSubmissionsService(submissionRepo, taskRepo, userRepo, notificationRepo)
	withdrawalsSvc := withdrawals.NewWithdrawalsService(withdrawalRepo, ledgerSvc, notificationRepo)
	paymentsSvc := payments.NewPaymentsService(paymentRepo, stripeRepo)
	notificationsSvc := notifications.NewNotificationsService(notificationRepo)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	tasksHandler := rest.NewTasksHandler(tasksSvc)
	submissionsHandler := rest.NewSubmissionsHandler(submissionsSvc)
	withdrawalsHandler := rest.NewWithdrawalsHandler(withdrawalsSvc)
	paymentsHandler := rest.NewPaymentsHandler(paymentsSvc)
	webhookHandler := rest.NewWebhookHandler(paymentsSvc, cfg.Stripe.StripeWebhookToken)
	notificationsHandler := rest.NewNotificationsHandler(notificationsSvc)
	adminHandler := rest.NewAdminHandler(userSvc)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware(tokenRepo)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupTaskRoutes(api, tasksHandler, authRequired, middleware.RequireRole)
	router.SetupSubmissionRoutes(api, submissionsHandler, authRequired, middleware.RequireRole)
	router.SetupWithdrawalRoutes(api, withdrawalsHandler, authRequired, middleware.RequireRole)
	router.SetupPaymentRoutes(api, paymentsHandler, authRequired)
	router.SetupWebhookRoutes(api, webhookHandler)
	router.SetupNotificationRoutes(api, notificationsHandler, authRequired)
	router.SetupAdminRoutes(api, adminHandler, authRequired, adminOnly)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
