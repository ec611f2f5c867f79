package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/api"
	"github.com/rxtech-lab/collection-search-mcp/internal/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the serverless entry point serving the HTTP API.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		initErr = initializeAPIServer()
	})
	if initErr != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.App())(w, r)
}

func initializeAPIServer() error {
	logger := utils.NewLogger(os.Getenv("LOG") == "true")

	var (
		dbService services.DBService
		err       error
	)
	if postgresURL := os.Getenv("POSTGRES_URL"); postgresURL != "" {
		dbService, err = services.NewPostgresDBService(postgresURL)
	} else {
		var dbPath string
		if dbPath, err = getDatabasePath(); err == nil {
			dbService, err = services.NewSqliteDBService(dbPath)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	chainService, searchService := server.InitializeServices(dbService.GetDB(), registry, logger)
	apiServer = api.NewAPIServer(chainService, searchService, registry, logger)

	apiServer.App().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(map[string]interface{}{
			"message": "Collection Search API",
			"status":  "running",
		})
	})

	return nil
}

// getDatabasePath returns a writable sqlite path: /tmp on Vercel, the home
// directory otherwise.
func getDatabasePath() (string, error) {
	if os.Getenv("VERCEL") == "1" {
		return "/tmp/collection-search.db", nil
	}

	homePath, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homePath, "collection-search.db"), nil
}
