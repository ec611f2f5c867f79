package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultCallTimeout bounds a single eth_call.
const DefaultCallTimeout = 30 * time.Second

// InitializeServices builds the services shared by the binaries. Search
// metrics are registered on reg.
func InitializeServices(db *gorm.DB, reg prometheus.Registerer, logger *zap.Logger) (services.ChainService, services.SearchService) {
	chainService := services.NewChainService(db)
	searchService := services.NewSearchService(
		chainService,
		services.NewRPCCallerDialer(DefaultCallTimeout),
		logger,
		services.NewSearchMetrics(reg),
	)
	return chainService, searchService
}
