package models

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
)

// DefaultFindByOwnerLimit is used when a query does not set limit.
const DefaultFindByOwnerLimit = 100

var validate = validator.New()

// FindByOwnerArguments are the user-facing arguments of a findByOwner query,
// shared by the MCP tools, the HTTP API and the CLI.
type FindByOwnerArguments struct {
	CollectionAddresses []string    `json:"collection_addresses" validate:"required,min=1,dive,eth_addr"`
	OwnerAddress        string      `json:"owner_address" validate:"required,eth_addr"`
	Limit               json.Number `json:"limit,omitempty"`
}

// Validate checks the address fields.
func (a FindByOwnerArguments) Validate() error {
	return validate.Struct(a)
}

// Query validates the arguments and converts them into a findByOwner query.
func (a FindByOwnerArguments) Query() (FindByOwnerQuery, error) {
	if err := a.Validate(); err != nil {
		return FindByOwnerQuery{}, err
	}

	collections, err := utils.ParseAddresses(a.CollectionAddresses)
	if err != nil {
		return FindByOwnerQuery{}, err
	}

	limit := big.NewInt(DefaultFindByOwnerLimit)
	if a.Limit != "" {
		limit, err = utils.ParseUint256(a.Limit.String())
		if err != nil {
			return FindByOwnerQuery{}, fmt.Errorf("invalid limit: %w", err)
		}
	}

	return FindByOwnerQuery{
		Collections: collections,
		Owner:       common.HexToAddress(a.OwnerAddress),
		Limit:       limit,
	}, nil
}
