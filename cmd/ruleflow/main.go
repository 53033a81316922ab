package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ruleflow/internal/api"
	"ruleflow/internal/api/handlers"
	"ruleflow/internal/repository"
	"ruleflow/internal/service"
	"ruleflow/pkg/auth"
	"ruleflow/pkg/config"
	"ruleflow/pkg/logger"
	"ruleflow/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting RuleFlow service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	clientRepo := repository.NewClientRepository(db, appLogger)
	ruleRepo := repository.NewRuleRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	processLogRepo := repository.NewProcessLogRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	embeddingService, err := service.NewEmbeddingService(ctx, &cfg.GigaChat, &cfg.Embedding, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding service", zap.Error(err))
	}

	extractService, err := service.NewExtractService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize extraction service", zap.Error(err))
	}
	defer extractService.Close()

	ruleService := service.NewRuleService(ruleRepo, embeddingService, &cfg.Pipeline, appLogger)
	ruleEngine := service.NewRuleEngine(appLogger)
	reconciliationService := service.NewReconciliationService(accountRepo, appLogger)
	ledgerService := service.NewLedgerService(accountRepo, appLogger)

	pipelineService := service.NewPipelineService(
		clientRepo,
		ruleService,
		extractService,
		ruleEngine,
		reconciliationService,
		ledgerService,
		processLogRepo,
		appLogger,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	clientHandler := handlers.NewClientHandler(clientRepo, appLogger)
	ruleHandler := handlers.NewRuleHandler(ruleService, appLogger)
	processHandler := handlers.NewProcessHandler(pipelineService, reconciliationService, ledgerService, appLogger)
	accountHandler := handlers.NewAccountHandler(accountRepo, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, clientHandler, ruleHandler, processHandler, accountHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
