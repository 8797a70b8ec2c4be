package handler

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/hashnipe/internal/api"
	"github.com/rxtech-lab/hashnipe/internal/config"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/mcp"
	"github.com/rxtech-lab/hashnipe/internal/server"
)

var (
	mu        sync.Mutex
	apiServer *api.APIServer
)

// Handler is the Vercel function entry point
func Handler(w http.ResponseWriter, r *http.Request) {
	s, err := getAPIServer()
	if err != nil {
		log.Printf("Failed to initialize API server: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	adaptor.FiberApp(s.App())(w, r)
}

func getAPIServer() (*api.APIServer, error) {
	mu.Lock()
	defer mu.Unlock()
	if apiServer != nil {
		return apiServer, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Only /tmp is writable on Vercel
	if os.Getenv("VERCEL") == "1" && cfg.PostgresURL == "" {
		cfg.DBPath = "/tmp/hashnipe.db"
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}
	dbService, err := server.OpenDatabase(cfg, logger.Named("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	svc := server.InitializeServices(cfg, dbService.GetDB(), logger)
	s := api.NewAPIServer(svc)
	s.SetMCPServer(mcp.NewMCPServer(svc))
	if cfg.JwksURI != "" {
		if err := s.EnableStreamableHttp(); err != nil {
			return nil, err
		}
	}

	s.App().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(map[string]interface{}{
			"message": "HaShnipe API",
			"status":  "running",
		})
	})

	apiServer = s
	return apiServer, nil
}
