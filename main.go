package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os/signal"
	"syscall"

	"tradeTutor/config"
	"tradeTutor/internal/adapters/anthropic"
	"tradeTutor/internal/adapters/logger"
	"tradeTutor/internal/adapters/sqlite"
	"tradeTutor/internal/game"
	"tradeTutor/internal/scenario"
	"tradeTutor/internal/server"
	"tradeTutor/internal/stream"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Oracle Client
	oracle, err := anthropic.NewClient(anthropic.Config{
		APIKey:  cfg.AnthropicAPIKey,
		BaseURL: cfg.AnthropicBaseURL,
		Timeout: cfg.OracleTimeout,
		Logger:  appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize oracle client: %v", err)
	}
	if !oracle.Configured() {
		appLogger.Warn(context.Background(), "ANTHROPIC_API_KEY not set; oracle-backed endpoints will report it")
	}

	// 5. Initialize Scenario Generator and Evaluator
	oracleCfg := scenario.Config{
		Model:     cfg.OracleModel,
		MaxTokens: cfg.OracleMaxTokens,
		Oracle:    oracle,
		Logger:    appLogger,
	}
	generator, err := scenario.NewGenerator(oracleCfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize scenario generator: %v", err)
	}
	evaluator, err := scenario.NewEvaluator(oracleCfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize scenario evaluator: %v", err)
	}

	// 6. Initialize the WebSocket Hub
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub(appLogger)
	go hub.Run(ctx)

	// 7. Initialize the Game Controller
	gameService, err := game.NewService(game.Config{
		Logger:      appLogger,
		Portfolios:  repo,
		Trades:      repo,
		Results:     repo,
		Evaluator:   evaluator,
		DayInterval: cfg.DayInterval,
		Publisher:   hub,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize game service: %v", err)
	}
	defer gameService.Close()

	// 8. Initialize and Run the HTTP Server
	srv, err := server.New(server.Config{
		Port:        cfg.ServerPort,
		FrontendURL: cfg.FrontendURL,
		Logger:      appLogger,
		Oracle:      oracle,
		Game:        gameService,
		Generator:   generator,
		Scenarios:   repo,
		Materials:   repo,
		Results:     repo,
		Users:       repo,
		Trades:      repo,
		WSHandler:   hub.HandleWS,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize HTTP server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		appLogger.Error(context.Background(), err, "HTTP server exited with error")
		log.Fatalf("FATAL: HTTP server exited with error: %v", err)
	}
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
