package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"go.uber.org/zap"
)

// handleContractArtifact serves the embedded contract artifact (ABI)
func (s *APIServer) handleContractArtifact(c *fiber.Ctx) error {
	contractName := c.Params("name")

	artifact, err := contracts.GetContractArtifact(contractName)
	if err != nil {
		s.logger.Debug("unknown contract artifact", zap.String("name", contractName), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(map[string]string{
			"error": "Contract not found",
		})
	}

	return c.JSON(artifact)
}
