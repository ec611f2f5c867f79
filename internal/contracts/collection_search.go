package contracts

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rxtech-lab/collection-search-mcp/internal/codec"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
)

//go:embed search/CollectionSearch.json
var collectionSearchJSON []byte

const CollectionSearchName = "CollectionSearch"

// ContractArtifact represents a compiled contract artifact
type ContractArtifact struct {
	ContractName string      `json:"contractName"`
	ABI          interface{} `json:"abi"`
	Bytecode     string      `json:"bytecode"`
}

// GetCollectionSearchArtifact returns the CollectionSearch contract artifact
func GetCollectionSearchArtifact() (*ContractArtifact, error) {
	var artifact ContractArtifact
	if err := json.Unmarshal(collectionSearchJSON, &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CollectionSearch artifact: %w", err)
	}
	return &artifact, nil
}

// GetContractArtifact returns a contract artifact by name
func GetContractArtifact(name string) (*ContractArtifact, error) {
	switch name {
	case CollectionSearchName:
		return GetCollectionSearchArtifact()
	default:
		return nil, fmt.Errorf("unknown contract: %s", name)
	}
}

// CollectionSearchABI returns the raw JSON ABI of the search contract.
func CollectionSearchABI() ([]byte, error) {
	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(collectionSearchJSON, &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CollectionSearch artifact: %w", err)
	}
	return artifact.ABI, nil
}

// TokenRecordType is the shape of struct TokenInfo { uint256 id; string uri; }.
func TokenRecordType() codec.Type {
	return codec.TupleOf(
		codec.Field{Name: "id", Type: codec.Uint256Type()},
		codec.Field{Name: "uri", Type: codec.StringType()},
	)
}

// CollectionResultType is the shape of
// struct Result { address collection; string name; TokenInfo[] tokens; }.
func CollectionResultType() codec.Type {
	return codec.TupleOf(
		codec.Field{Name: "collection", Type: codec.AddressType()},
		codec.Field{Name: "name", Type: codec.StringType()},
		codec.Field{Name: "tokens", Type: codec.ArrayOf(TokenRecordType())},
	)
}

// FindByOwnerMethod describes
// findByOwner(address[] erc721Addresses, address owner, uint256 limit) returns (Result[]).
func FindByOwnerMethod() codec.Method {
	return codec.Method{
		Name: "findByOwner",
		Inputs: []codec.Type{
			codec.ArrayOf(codec.AddressType()),
			codec.AddressType(),
			codec.Uint256Type(),
		},
		Outputs: []codec.Type{codec.ArrayOf(CollectionResultType())},
	}
}

// EncodeFindByOwner builds the calldata for a findByOwner query.
func EncodeFindByOwner(query models.FindByOwnerQuery) ([]byte, error) {
	if query.Limit == nil {
		return nil, fmt.Errorf("%w: limit is required", codec.ErrTypeMismatch)
	}
	return FindByOwnerMethod().Pack(
		codec.Addresses(query.Collections...),
		codec.Address(query.Owner),
		codec.Uint256(query.Limit),
	)
}

// DecodeFindByOwner decodes the hex return value of findByOwner. A call that
// returned no data yields an empty slice.
func DecodeFindByOwner(hexData string) ([]models.CollectionResult, error) {
	values, err := FindByOwnerMethod().DecodeOutputs(hexData)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []models.CollectionResult{}, nil
	}
	return CollectionResultsFromValue(values[0])
}

// CollectionResultsFromValue converts a decoded Result[] into models.
func CollectionResultsFromValue(v codec.Value) ([]models.CollectionResult, error) {
	if !v.Type.Equal(codec.ArrayOf(CollectionResultType())) {
		return nil, fmt.Errorf("%w: expected %s, got %s", codec.ErrTypeMismatch, codec.ArrayOf(CollectionResultType()), v.Type)
	}

	results := make([]models.CollectionResult, 0, len(v.Items))
	for _, item := range v.Items {
		if len(item.Items) != 3 {
			return nil, fmt.Errorf("%w: result has %d fields", codec.ErrTypeMismatch, len(item.Items))
		}
		tokens := make([]models.TokenRecord, 0, len(item.Items[2].Items))
		for _, tok := range item.Items[2].Items {
			if len(tok.Items) != 2 {
				return nil, fmt.Errorf("%w: token has %d fields", codec.ErrTypeMismatch, len(tok.Items))
			}
			tokens = append(tokens, models.TokenRecord{
				ID:  tok.Items[0].Uint,
				URI: tok.Items[1].Str,
			})
		}
		results = append(results, models.CollectionResult{
			CollectionAddress: item.Items[0].Address,
			Name:              item.Items[1].Str,
			Tokens:            tokens,
		})
	}
	return results, nil
}

// CollectionResultsToValue is the inverse of CollectionResultsFromValue.
func CollectionResultsToValue(results []models.CollectionResult) codec.Value {
	items := make([]codec.Value, len(results))
	for i, r := range results {
		tokens := make([]codec.Value, len(r.Tokens))
		for j, t := range r.Tokens {
			tokens[j] = codec.Tuple(TokenRecordType(), codec.Uint256(t.ID), codec.String(t.URI))
		}
		items[i] = codec.Tuple(CollectionResultType(),
			codec.Address(r.CollectionAddress),
			codec.String(r.Name),
			codec.Array(TokenRecordType(), tokens...),
		)
	}
	return codec.Array(CollectionResultType(), items...)
}
