package services

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"gorm.io/gorm"
)

// ErrNoActiveChain is returned when no chain has been selected yet.
var ErrNoActiveChain = errors.New("no active chain selected")

// ChainService handles chain-related operations
type ChainService interface {
	CreateChain(chain *models.Chain) error
	GetActiveChain() (*models.Chain, error)
	GetChainByID(id uint) (*models.Chain, error)
	SetActiveChainByID(chainID uint) error
	UpsertChain(chain *models.Chain) (*models.Chain, error)
	ListChains() ([]models.Chain, error)
}

type chainService struct {
	db *gorm.DB
}

// NewChainService creates a new ChainService
func NewChainService(db *gorm.DB) ChainService {
	return &chainService{db: db}
}

// CreateChain creates a new chain
func (s *chainService) CreateChain(chain *models.Chain) error {
	return s.db.Create(chain).Error
}

// GetActiveChain returns the currently active chain
func (s *chainService) GetActiveChain() (*models.Chain, error) {
	var chain models.Chain
	err := s.db.Where("is_active = ?", true).First(&chain).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveChain
	}
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// GetChainByID returns a chain by its primary key
func (s *chainService) GetChainByID(id uint) (*models.Chain, error) {
	var chain models.Chain
	if err := s.db.First(&chain, id).Error; err != nil {
		return nil, err
	}
	return &chain, nil
}

// SetActiveChainByID sets a chain as active by chain ID
func (s *chainService) SetActiveChainByID(chainID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var chain models.Chain
		if err := tx.First(&chain, chainID).Error; err != nil {
			return fmt.Errorf("chain %d not found: %w", chainID, err)
		}

		// Deactivate all chains
		if err := tx.Model(&models.Chain{}).Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
			return err
		}

		// Activate the selected chain by ID
		return tx.Model(&models.Chain{}).Where("id = ?", chainID).Update("is_active", true).Error
	})
}

// UpsertChain creates a chain or updates the existing one with the same
// chain type and network ID.
func (s *chainService) UpsertChain(chain *models.Chain) (*models.Chain, error) {
	var existing models.Chain
	err := s.db.Where("chain_type = ? AND chain_id = ?", chain.ChainType, chain.NetworkID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(chain).Error; err != nil {
			return nil, err
		}
		return chain, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"rpc": chain.RPC,
	}
	if chain.Name != "" {
		updates["name"] = chain.Name
	}
	if chain.SearchContract != "" {
		updates["search_contract"] = chain.SearchContract
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetChainByID(existing.ID)
}

// ListChains returns all chains
func (s *chainService) ListChains() ([]models.Chain, error) {
	var chains []models.Chain
	err := s.db.Order("id").Find(&chains).Error
	return chains, err
}
