package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/hashnipe/internal/api"
	"github.com/rxtech-lab/hashnipe/internal/config"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/mcp"
	"github.com/rxtech-lab/hashnipe/internal/server"
	"github.com/rxtech-lab/hashnipe/internal/services"
	"go.uber.org/zap"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func configureAndStartServer(svc *server.Services, port int) (*api.APIServer, int, error) {
	// Local mode: the API runs without authentication and uses the static token and wallet
	apiServer := api.NewAPIServer(svc)

	var portPtr *int
	if port != 0 {
		portPtr = &port
	}
	startedPort, err := apiServer.Start(portPtr)
	if err != nil {
		return nil, 0, err
	}

	apiServer.SetMCPServer(mcp.NewMCPServer(svc))
	return apiServer, startedPort, nil
}

func main() {
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	flag.Parse()

	// Disable logging by default
	if !*enableLog {
		log.SetOutput(io.Discard)
	}

	if *showVersion {
		log.SetOutput(os.Stderr)
		log.Printf("HaShnipe MCP Server\n")
		log.Printf("Version: %s\n", Version)
		log.Printf("Commit: %s\n", CommitHash)
		log.Printf("Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		log.SetOutput(os.Stderr)
		log.Printf("HaShnipe MCP Server\n\n")
		log.Printf("Usage: %s [options]\n\n", os.Args[0])
		log.Printf("Options:\n")
		log.Printf("  --version    Show version information\n")
		log.Printf("  --help       Show this help message\n")
		log.Printf("  --log        Enable logging output\n\n")
		log.Printf("Description:\n")
		log.Printf("  Virtual Protocol genesis launch scoring, agent token feeds and trading.\n")
		log.Printf("  Provides 9 MCP tools for launches, tokenomics, quotes, swaps and snipes.\n\n")
		log.Printf("Database: $HASHNIPE_DB_PATH or ~/hashnipe.db (SQLite)\n")
		log.Printf("Web Interface: http://localhost:[random-port]\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal("Invalid configuration: ", err)
	}

	logger := zap.NewNop()
	if *enableLog {
		if logger, err = logging.New(cfg.Debug); err != nil {
			log.Fatal(err)
		}
	}
	defer func() { _ = logger.Sync() }()

	dbService, err := services.NewSqliteDBService(cfg.DBPath, services.WithDBLogger(logger.Named("db")))
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer dbService.Close()

	svc := server.InitializeServices(cfg, dbService.GetDB(), logger)

	apiServer, port, err := configureAndStartServer(svc, 0) // 0 for random port
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}
	logger.Info("API server started", zap.Int("port", port))

	mcpServer := apiServer.GetMCPServer()
	if mcpServer == nil {
		log.Fatal("MCP server not found")
	}

	go func() {
		if err := mcpServer.StartStdioServer(); err != nil {
			log.SetOutput(os.Stderr)
			log.SetFlags(0)
			log.Fatal("Failed to start MCP server:", err)
		}
	}()

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down servers")
	if err := apiServer.Shutdown(); err != nil {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
		log.Printf("Error shutting down API server: %v", err)
	}
	logger.Info("servers shut down")
}
