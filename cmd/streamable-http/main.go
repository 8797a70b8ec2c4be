package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/hashnipe/internal/api"
	"github.com/rxtech-lab/hashnipe/internal/config"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/mcp"
	"github.com/rxtech-lab/hashnipe/internal/server"
	"github.com/rxtech-lab/hashnipe/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// configureAndStartServer wires the services on db, mounts the MCP endpoint behind
// authentication and starts listening. Port 0 picks a random port.
func configureAndStartServer(cfg *config.Config, db *gorm.DB, logger *zap.Logger, port int) (*api.APIServer, int, error) {
	svc := server.InitializeServices(cfg, db, logger)

	apiServer := api.NewAPIServer(svc)
	apiServer.SetMCPServer(mcp.NewMCPServer(svc))
	if err := apiServer.EnableStreamableHttp(); err != nil {
		return nil, 0, err
	}

	startedPort, err := apiServer.Start(&port)
	if err != nil {
		return nil, 0, err
	}
	return apiServer, startedPort, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	// initialize postgres database
	dbService, err := services.NewPostgresDBService(cfg.PostgresURL, services.WithDBLogger(logger.Named("db")))
	if err != nil {
		logger.Fatal("Failed to initialize database service", zap.Error(err))
	}
	defer dbService.Close()

	apiServer, startedPort, err := configureAndStartServer(cfg, dbService.GetDB(), logger, cfg.Port)
	if err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
	}
	logger.Info("API server started", zap.Int("port", startedPort))

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down server")
	if err := apiServer.Shutdown(); err != nil {
		logger.Error("error shutting down API server", zap.Error(err))
	}
	logger.Info("server shut down")
}
