package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ruleflow/internal/models"
	"ruleflow/internal/repository"
	"ruleflow/internal/service"
	"ruleflow/pkg/config"
	"ruleflow/pkg/logger"
	"ruleflow/pkg/postgres"

	"go.uber.org/zap"
)

// seedClient is one entry of the seed file: a client plus its rule sets
// keyed by process type.
type seedClient struct {
	Name             string   `json:"name"`
	PlacementRules   []string `json:"placement_rules"`
	TransactionRules []string `json:"transaction_rules"`
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	clientRepo := repository.NewClientRepository(db, appLogger)
	ruleRepo := repository.NewRuleRepository(db, appLogger)

	embeddingService, err := service.NewEmbeddingService(ctx, &cfg.GigaChat, &cfg.Embedding, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding service", zap.Error(err))
	}

	ruleService := service.NewRuleService(ruleRepo, embeddingService, &cfg.Pipeline, appLogger)

	appLogger.Info("Starting database seeding...")

	seedFile := filepath.Join("cmd", "seed", "seed_data.json")
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	seeds, err := loadSeedFile(seedFile)
	if err != nil {
		appLogger.Fatal("Failed to load seed file", zap.String("path", seedFile), zap.Error(err))
	}

	for _, seed := range seeds {
		client, err := findOrCreateClient(ctx, clientRepo, seed.Name, appLogger)
		if err != nil {
			appLogger.Error("Failed to resolve client", zap.String("name", seed.Name), zap.Error(err))
			continue
		}

		if err := storeRuleSet(ctx, ruleService, client, models.ProcessTypePlacement, seed.PlacementRules, appLogger); err != nil {
			continue
		}
		if err := storeRuleSet(ctx, ruleService, client, models.ProcessTypeTransaction, seed.TransactionRules, appLogger); err != nil {
			continue
		}
	}

	appLogger.Info("Database seeding completed successfully!")
}

func loadSeedFile(path string) ([]seedClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds []seedClient
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return seeds, nil
}

// findOrCreateClient reuses an existing client with the exact name so
// reruns do not duplicate clients.
func findOrCreateClient(ctx context.Context, repo *repository.ClientRepository, name string, logger *zap.Logger) (*models.Client, error) {
	matches, err := repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		if match.Name == name {
			logger.Info("Client already exists, reusing", zap.String("name", name), zap.Int64("client_id", match.ID))
			return match, nil
		}
	}

	client := &models.Client{Name: name}
	if err := repo.Create(ctx, client); err != nil {
		return nil, err
	}

	logger.Info("Client created", zap.String("name", name), zap.Int64("client_id", client.ID))
	return client, nil
}

func storeRuleSet(
	ctx context.Context,
	ruleService *service.RuleService,
	client *models.Client,
	processType models.ProcessType,
	rules []string,
	logger *zap.Logger,
) error {
	if len(rules) == 0 {
		return nil
	}

	stored, err := ruleService.StoreRules(ctx, client.ID, processType, rules)
	if err != nil {
		logger.Error("Failed to store rules",
			zap.String("client", client.Name),
			zap.String("process_type", processType.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Info("Rules seeded",
		zap.String("client", client.Name),
		zap.String("process_type", processType.String()),
		zap.Int("stored", stored),
	)
	return nil
}
