package api

import (
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/collection-search-mcp/internal/mcp"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"go.uber.org/zap"
)

type APIServer struct {
	app           *fiber.App
	chainService  services.ChainService
	searchService services.SearchService
	gatherer      prometheus.Gatherer
	logger        *zap.Logger
	mcpServer     *mcp.MCPServer
	port          int
}

func NewAPIServer(chainService services.ChainService, searchService services.SearchService, gatherer prometheus.Gatherer, log *zap.Logger) *APIServer {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Output:     zap.NewStdLog(log.Named("http")).Writer(),
	}))

	server := &APIServer{
		app:           app,
		chainService:  chainService,
		searchService: searchService,
		gatherer:      gatherer,
		logger:        log.Named("api"),
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	if s.gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	s.app.Get("/api/chains", s.handleListChains)
	s.app.Post("/api/find-by-owner", s.handleFindByOwner)

	// Contract artifacts API
	s.app.Get("/api/contracts/:name", s.handleContractArtifact)
}

// Start starts the server on port, or on a random available port when port
// is 0, and returns the port in use.
func (s *APIServer) Start(port int) (int, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.app.Listener(listener); err != nil {
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

// App exposes the fiber app, mainly for app.Test in tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}

// SetMCPServer sets the MCP server served next to the API
func (s *APIServer) SetMCPServer(mcpServer *mcp.MCPServer) {
	s.mcpServer = mcpServer
}

// EnableStreamableHttp serves the MCP server over the streamable HTTP
// transport at /mcp. SetMCPServer must be called first.
func (s *APIServer) EnableStreamableHttp() error {
	if s.mcpServer == nil {
		return fmt.Errorf("mcp server is not set")
	}
	handler := server.NewStreamableHTTPServer(s.mcpServer.GetServer())
	s.app.All("/mcp", adaptor.HTTPHandler(handler))
	return nil
}

// GetMCPServer returns the MCP server instance
func (s *APIServer) GetMCPServer() *mcp.MCPServer {
	return s.mcpServer
}
