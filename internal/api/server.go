package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rxtech-lab/hashnipe/internal/api/middleware"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/mcp"
	app "github.com/rxtech-lab/hashnipe/internal/server"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"go.uber.org/zap"
)

type APIServer struct {
	app        *fiber.App
	services   *app.Services
	mcpServer  *mcp.MCPServer
	authConfig *middleware.AuthConfig
	auth       fiber.Handler
	logger     *zap.Logger
	port       int
}

func NewAPIServer(svc *app.Services) *APIServer {
	fiberApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	fiberApp.Use(cors.New())
	fiberApp.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:      fiberApp,
		services: svc,
		logger:   svc.Logger.Named("api"),
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// OAuth protected resource metadata
	s.app.Get("/.well-known/oauth-protected-resource", s.handleOAuthProtectedResource)
	s.app.Get("/.well-known/oauth-protected-resource/mcp", s.handleOAuthProtectedResource)

	// Launches and tokens (public)
	s.app.Get("/api/launches", s.handleListLaunches)
	s.app.Get("/api/launches/top", s.handleTopLaunches)
	s.app.Get("/api/launches/:id", s.handleGetLaunch)
	s.app.Get("/api/tokens/:category", s.handleListTokens)
	s.app.Get("/api/tokenomics/:virtualId", s.handleGetTokenomics)

	// Trading (bearer token required once authentication is enabled)
	s.app.Get("/api/quote", s.requireAuth, s.handleQuote)
	s.app.Get("/api/balance", s.requireAuth, s.handleBalance)
	s.app.Post("/api/trade", s.requireAuth, s.handleTrade)
	s.app.Get("/api/trades", s.requireAuth, s.handleListTrades)

	// Snipes
	s.app.Post("/api/snipe", s.requireAuth, s.handleRegisterSnipe)
	s.app.Get("/api/snipes", s.requireAuth, s.handleListSnipes)
}

// EnableAuthentication requires a bearer token on the trading and snipe routes. Tokens are
// verified against the configured JWKS when one is set.
func (s *APIServer) EnableAuthentication() {
	cfg := middleware.DefaultAuthConfig()
	cfg.ResourceID = s.services.Config.AuthAudience
	if s.services.Config.JwksURI != "" {
		cfg.JWTAuthenticator = utils.NewJwtAuthenticator(s.services.Config.JwksURI)
	}
	if s.services.Config.AuthAudience != "" {
		cfg.ResourceMetadataURL = s.services.Config.AuthAudience + "/.well-known/oauth-protected-resource/mcp"
	}
	s.authConfig = &cfg
	s.auth = middleware.AuthMiddleware(cfg)
}

// EnableStreamableHttp mounts the MCP server at /mcp behind the auth middleware
func (s *APIServer) EnableStreamableHttp() error {
	if s.mcpServer == nil {
		return fmt.Errorf("MCP server not set")
	}
	if s.auth == nil {
		s.EnableAuthentication()
	}

	authConfig := *s.authConfig
	handler := s.mcpServer.StreamableHTTPServer(func(ctx context.Context, r *http.Request) context.Context {
		user, err := middleware.Authenticate(authConfig, r.Header.Get("Authorization"), r.Header.Get(middleware.WalletHeader))
		if err != nil {
			return ctx
		}
		return utils.WithAuthenticatedUser(ctx, user)
	})

	s.app.All("/mcp", s.requireAuth, adaptor.HTTPHandler(handler))
	return nil
}

func (s *APIServer) requireAuth(c *fiber.Ctx) error {
	if s.auth == nil {
		return c.Next()
	}
	return s.auth(c)
}

func (s *APIServer) handleOAuthProtectedResource(c *fiber.Ctx) error {
	cfg := s.services.Config
	servers := []string{}
	if cfg.AuthServerURL != "" {
		servers = append(servers, cfg.AuthServerURL)
	}
	return c.JSON(fiber.Map{
		"authorization_servers":    servers,
		"bearer_methods_supported": []string{"header"},
		"resource":                 cfg.AuthAudience,
		"scopes_supported":         []string{},
	})
}

// writeError renders err as {"error": message} with the status of its category
func (s *APIServer) writeError(c *fiber.Ctx, err error) error {
	status := errs.HTTPStatus(err)
	var rl *errs.RateLimitError
	if errors.As(err, &rl) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rl.Seconds()))
	}
	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": errs.UserMessage(err)})
}

// Start starts the server on the given port, or on a random available port when port is nil
func (s *APIServer) Start(port *int) (int, error) {
	if port != nil && *port != 0 {
		s.port = *port
	} else {
		// Find an available port
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}

		// Get the assigned port
		s.port = listener.Addr().(*net.TCPAddr).Port

		// Close the listener so Fiber can use it
		listener.Close()
	}

	// Start the server on the found port
	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", s.port)); err != nil {
			s.logger.Error("API server stopped", zap.Error(err))
		}
	}()

	return s.port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the underlying fiber app
func (s *APIServer) App() *fiber.App {
	return s.app
}

// SetMCPServer sets the MCP server instance for accessing MCP methods
func (s *APIServer) SetMCPServer(mcpServer *mcp.MCPServer) {
	s.mcpServer = mcpServer
}

// GetMCPServer returns the MCP server instance
func (s *APIServer) GetMCPServer() *mcp.MCPServer {
	return s.mcpServer
}
