package models

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenRecord is a single token held by the queried owner.
type TokenRecord struct {
	ID  *big.Int `json:"id"`
	URI string   `json:"uri"`
}

// CollectionResult groups the owner's tokens of one collection.
type CollectionResult struct {
	CollectionAddress common.Address `json:"collection_address"`
	Name              string         `json:"name"`
	Tokens            []TokenRecord  `json:"tokens"`
}

// FindByOwnerQuery holds the arguments of a findByOwner call.
type FindByOwnerQuery struct {
	Collections []common.Address `json:"collections"`
	Owner       common.Address   `json:"owner"`
	Limit       *big.Int         `json:"limit"`
}

// MarshalJSON renders the token ID as a decimal string so 256-bit IDs
// survive JSON clients that parse numbers as doubles.
func (t TokenRecord) MarshalJSON() ([]byte, error) {
	id := ""
	if t.ID != nil {
		id = t.ID.String()
	}
	return json.Marshal(struct {
		ID  string `json:"id"`
		URI string `json:"uri"`
	}{ID: id, URI: t.URI})
}
