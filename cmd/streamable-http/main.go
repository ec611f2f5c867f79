package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/api"
	"github.com/rxtech-lab/collection-search-mcp/internal/mcp"
	"github.com/rxtech-lab/collection-search-mcp/internal/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
	"go.uber.org/zap"
)

// Build information (set via ldflags)
var Version = "dev"

func configureAndStartServer(dbService services.DBService, port int, logger *zap.Logger) (*api.APIServer, int, error) {
	registry := prometheus.NewRegistry()
	chainService, searchService := server.InitializeServices(dbService.GetDB(), registry, logger)

	apiServer := api.NewAPIServer(chainService, searchService, registry, logger)
	apiServer.SetMCPServer(mcp.NewMCPServer(chainService, searchService, Version))
	if err := apiServer.EnableStreamableHttp(); err != nil {
		return nil, 0, err
	}

	startedPort, err := apiServer.Start(port)
	if err != nil {
		return nil, 0, err
	}
	return apiServer, startedPort, nil
}

func main() {
	logger := utils.NewLogger(os.Getenv("LOG") != "false")
	defer logger.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	parsedPort, err := strconv.Atoi(port)
	if err != nil {
		logger.Fatal("Invalid port number", zap.String("port", port), zap.Error(err))
	}

	dbService, err := services.NewPostgresDBService(os.Getenv("POSTGRES_URL"))
	if err != nil {
		logger.Fatal("Failed to initialize database service", zap.Error(err))
	}
	defer dbService.Close()

	apiServer, startedPort, err := configureAndStartServer(dbService, parsedPort, logger)
	if err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
	}
	logger.Info("API server started", zap.Int("port", startedPort))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down server")
	if err := apiServer.Shutdown(); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}
}
