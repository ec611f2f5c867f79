package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/collection-search-mcp/internal/codec"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
	"go.uber.org/zap"
)

// FindByOwnerRequest is the body of POST /api/find-by-owner. The query always
// runs against the active chain's RPC and search contract.
type FindByOwnerRequest = models.FindByOwnerArguments

// FindByOwnerResponse is returned by POST /api/find-by-owner.
type FindByOwnerResponse struct {
	Results  []models.CollectionResult `json:"results"`
	Contract string                    `json:"contract"`
	ChainID  string                    `json:"chain_id,omitempty"`
}

func (s *APIServer) handleFindByOwner(c *fiber.Ctx) error {
	var req FindByOwnerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, fmt.Sprintf("Invalid request body: %v", err))
	}
	query, err := req.Query()
	if err != nil {
		return badRequest(c, fmt.Sprintf("Invalid arguments: %v", err))
	}

	results, chain, err := s.searchService.FindByOwnerOnActiveChain(c.UserContext(), query)
	if err != nil {
		return s.searchError(c, err)
	}

	return c.JSON(FindByOwnerResponse{
		Results:  results,
		Contract: chain.SearchContract,
		ChainID:  chain.NetworkID,
	})
}

// searchError maps search failures to HTTP statuses: a missing or
// misconfigured chain is the caller's problem, anything that went wrong
// talking to the node or decoding its answer is a bad gateway.
func (s *APIServer) searchError(c *fiber.Ctx, err error) error {
	var rpcErr *utils.RPCError
	switch {
	case errors.Is(err, services.ErrNoActiveChain):
		return badRequest(c, "No active chain selected")
	case errors.Is(err, services.ErrChainNotSearchable):
		return badRequest(c, err.Error())
	case errors.Is(err, codec.ErrTypeMismatch):
		return badRequest(c, err.Error())
	case errors.As(err, &rpcErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "RPC error",
			"code":    rpcErr.Code,
			"message": rpcErr.Message,
		})
	case errors.Is(err, codec.ErrTruncatedData), errors.Is(err, codec.ErrInvalidEncoding):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	s.logger.Warn("findByOwner failed", zap.Error(err))
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}

func (s *APIServer) handleListChains(c *fiber.Ctx) error {
	chains, err := s.chainService.ListChains()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"chains": chains,
		"total":  len(chains),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
