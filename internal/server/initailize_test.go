package server

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeServices(t *testing.T) {
	db, err := services.NewSqliteDBService(filepath.Join(t.TempDir(), "init.db"))
	require.NoError(t, err)
	defer db.Close()

	registry := prometheus.NewRegistry()
	chainService, searchService := InitializeServices(db.GetDB(), registry, zap.NewNop())
	assert.NotNil(t, chainService)
	assert.NotNil(t, searchService)

	_, err = chainService.GetActiveChain()
	assert.ErrorIs(t, err, services.ErrNoActiveChain)

	// Registering twice on the same registry must fail
	assert.Panics(t, func() {
		InitializeServices(db.GetDB(), registry, zap.NewNop())
	})
}
