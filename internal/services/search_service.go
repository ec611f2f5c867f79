package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
	"go.uber.org/zap"
)

// ErrChainNotSearchable is returned when the active chain cannot run a
// collection search.
var ErrChainNotSearchable = errors.New("chain is not searchable")

// SearchService runs findByOwner queries against a collection search contract.
type SearchService interface {
	// FindByOwner calls the contract at contract through rpcURL.
	FindByOwner(ctx context.Context, rpcURL string, contract common.Address, query models.FindByOwnerQuery) ([]models.CollectionResult, error)
	// FindByOwnerOnActiveChain uses the active chain's RPC and search contract.
	FindByOwnerOnActiveChain(ctx context.Context, query models.FindByOwnerQuery) ([]models.CollectionResult, *models.Chain, error)
	// EncodeFindByOwner returns the calldata of a query without calling out.
	EncodeFindByOwner(query models.FindByOwnerQuery) (string, error)
	// DecodeFindByOwner decodes a raw hex response.
	DecodeFindByOwner(hexData string) ([]models.CollectionResult, error)
}

type searchService struct {
	chainService ChainService
	dial         CallerDialer
	logger       *zap.Logger
	metrics      *SearchMetrics
}

// NewSearchService creates a new SearchService
func NewSearchService(chainService ChainService, dial CallerDialer, logger *zap.Logger, metrics *SearchMetrics) SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &searchService{
		chainService: chainService,
		dial:         dial,
		logger:       logger.Named("search"),
		metrics:      metrics,
	}
}

func (s *searchService) FindByOwnerOnActiveChain(ctx context.Context, query models.FindByOwnerQuery) ([]models.CollectionResult, *models.Chain, error) {
	if s.chainService == nil {
		return nil, nil, ErrNoActiveChain
	}
	chain, err := s.chainService.GetActiveChain()
	if err != nil {
		return nil, nil, err
	}
	if chain.ChainType != models.ChainTypeEthereum {
		return nil, chain, fmt.Errorf("%w: collection search is only supported on ethereum chains, got %s", ErrChainNotSearchable, chain.ChainType)
	}
	if !utils.IsValidEthereumAddress(chain.SearchContract) {
		return nil, chain, fmt.Errorf("%w: chain %q has no valid search contract configured", ErrChainNotSearchable, chain.Name)
	}

	results, err := s.FindByOwner(ctx, chain.RPC, common.HexToAddress(chain.SearchContract), query)
	return results, chain, err
}

func (s *searchService) FindByOwner(ctx context.Context, rpcURL string, contract common.Address, query models.FindByOwnerQuery) ([]models.CollectionResult, error) {
	logger := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("contract", contract.Hex()),
	)
	logger.Info("findByOwner",
		zap.String("owner", query.Owner.Hex()),
		zap.Int("collections", len(query.Collections)),
		zap.Stringer("limit", query.Limit),
	)

	payload, err := contracts.EncodeFindByOwner(query)
	if err != nil {
		s.observe(OutcomeEncodeError)
		return nil, fmt.Errorf("failed to encode findByOwner call: %w", err)
	}

	caller, release, err := s.dial(ctx, rpcURL)
	if err != nil {
		s.observe(OutcomeRPCError)
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}
	defer release()

	start := time.Now()
	raw, err := caller.CallContract(ctx, contract, payload)
	if s.metrics != nil {
		s.metrics.CallDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.observe(OutcomeRPCError)
		var rpcErr *utils.RPCError
		if errors.As(err, &rpcErr) {
			logger.Warn("contract call rejected", zap.Int("code", rpcErr.Code), zap.String("message", rpcErr.Message))
		}
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	logger.Debug("raw response",
		zap.String("data", raw),
		zap.Int("bytes", len(strings.TrimPrefix(raw, "0x"))/2),
	)

	results, err := contracts.DecodeFindByOwner(raw)
	if err != nil {
		s.observe(OutcomeDecodeError)
		logger.Error("failed to decode findByOwner response", zap.Error(err))
		return nil, err
	}

	s.observe(OutcomeSuccess)
	s.logResults(logger, results)
	return results, nil
}

func (s *searchService) EncodeFindByOwner(query models.FindByOwnerQuery) (string, error) {
	payload, err := contracts.EncodeFindByOwner(query)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(payload), nil
}

func (s *searchService) DecodeFindByOwner(hexData string) ([]models.CollectionResult, error) {
	return contracts.DecodeFindByOwner(hexData)
}

func (s *searchService) observe(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Queries.WithLabelValues(outcome).Inc()
}

func (s *searchService) logResults(logger *zap.Logger, results []models.CollectionResult) {
	tokens := 0
	for _, r := range results {
		tokens += len(r.Tokens)
		logger.Debug("collection",
			zap.String("collection", r.CollectionAddress.Hex()),
			zap.String("name", r.Name),
			zap.Int("tokens", len(r.Tokens)),
		)
	}
	if s.metrics != nil {
		s.metrics.Results.Add(float64(len(results)))
		s.metrics.Tokens.Add(float64(tokens))
	}
	logger.Info("findByOwner completed", zap.Int("results", len(results)), zap.Int("tokens", tokens))
}
