package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
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
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func configureAndStartServer(dbService services.DBService, port int, logger *zap.Logger) (*api.APIServer, int, error) {
	registry := prometheus.NewRegistry()
	chainService, searchService := server.InitializeServices(dbService.GetDB(), registry, logger)

	apiServer := api.NewAPIServer(chainService, searchService, registry, logger)
	startedPort, err := apiServer.Start(port)
	if err != nil {
		return nil, 0, err
	}

	mcpServer := mcp.NewMCPServer(chainService, searchService, Version)
	apiServer.SetMCPServer(mcpServer)

	return apiServer, startedPort, nil
}

func openDatabase(dbPath string) (services.DBService, error) {
	if postgresURL := os.Getenv("POSTGRES_URL"); postgresURL != "" {
		return services.NewPostgresDBService(postgresURL)
	}
	return services.NewSqliteDBService(dbPath)
}

func defaultDatabasePath() string {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return "collection-search.db"
	}
	return filepath.Join(homePath, "collection-search.db")
}

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	var dbPath = flag.String("db", defaultDatabasePath(), "SQLite database path (ignored when POSTGRES_URL is set)")
	var port = flag.Int("port", 0, "API server port, 0 picks a random port")
	flag.Parse()

	// Stdout belongs to the MCP transport
	if *showVersion {
		fmt.Fprintf(os.Stderr, "Collection Search MCP Server\n")
		fmt.Fprintf(os.Stderr, "Version: %s\n", Version)
		fmt.Fprintf(os.Stderr, "Commit: %s\n", CommitHash)
		fmt.Fprintf(os.Stderr, "Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		fmt.Fprintf(os.Stderr, "Collection Search MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nDescription:\n")
		fmt.Fprintf(os.Stderr, "  Finds the ERC-721 tokens an owner holds through an on-chain collection\n")
		fmt.Fprintf(os.Stderr, "  search contract. Provides 6 MCP tools over stdio and an HTTP API.\n\n")
		fmt.Fprintf(os.Stderr, "Database: %s (SQLite), or POSTGRES_URL\n", *dbPath)
		return
	}

	logger := utils.NewLogger(*enableLog)
	defer logger.Sync()

	dbService, err := openDatabase(*dbPath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	apiServer, startedPort, err := configureAndStartServer(dbService, *port, logger)
	if err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
	}
	logger.Info("API server started", zap.Int("port", startedPort))

	mcpServer := apiServer.GetMCPServer()
	go func() {
		if err := mcpServer.StartStdioServer(); err != nil {
			logger.Error("MCP server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down servers")
	if err := apiServer.Shutdown(); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}
}
