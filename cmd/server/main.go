package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mfbrokers/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"mfbrokers/internal/auth"
	"mfbrokers/internal/cache"
	"mfbrokers/internal/config"
	"mfbrokers/internal/db"
	"mfbrokers/internal/handler"
	"mfbrokers/internal/mailer"
	"mfbrokers/internal/mfapi"
	"mfbrokers/internal/model"
	"mfbrokers/internal/repository"
	"mfbrokers/internal/router"
	"mfbrokers/internal/service"
	"mfbrokers/internal/worker"
)

// @title Mutual Fund Broker API
// @version 1.0
// @description Mutual fund brokerage backend with OTP signup, JWT authentication and investment tracking.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Investment{}); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Fatal("redis init", zap.Error(err))
	}
	pingCancel()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	investmentRepo := repository.NewInvestmentRepository(gormDB)

	// Initialize auth components
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	otpStore := auth.NewOTPStore(cacheClient)

	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail)
	if err != nil {
		logger.Fatal("mailer init", zap.Error(err))
	}

	fundAPI := mfapi.NewClient(cfg.FundAPIURL, cfg.FundAPIHost, cfg.FundAPIKey)

	// Initialize services
	userService := service.NewUserService(userRepo, otpStore, tokenService, smtpMailer, logger)
	investmentService := service.NewInvestmentService(investmentRepo, fundAPI, logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	investmentHandler := handler.NewInvestmentHandler(investmentService)

	e := echo.New()
	e.Use(middleware.RequestID())

	// Register routes
	router.Register(e, tokenService, userRepo, userHandler, investmentHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The price sync job runs on its own schedule, decoupled from requests.
	syncWorker := worker.NewPriceSyncWorker(investmentRepo, fundAPI, cfg.PriceSyncInterval, worker.DefaultRetryDelay, logger)
	go syncWorker.Run(ctx)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
