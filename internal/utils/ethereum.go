package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/collection-search-mcp/internal/constants"
)

func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(address)
}

// ParseAddresses converts hex strings into addresses, rejecting malformed input.
func ParseAddresses(hexAddrs []string) ([]common.Address, error) {
	out := make([]common.Address, len(hexAddrs))
	for i, h := range hexAddrs {
		if !IsValidEthereumAddress(h) {
			return nil, fmt.Errorf("invalid address at index %d: %q", i, h)
		}
		out[i] = common.HexToAddress(h)
	}
	return out, nil
}

// ParseUint256 parses a decimal or 0x-prefixed hex string into a non-negative
// integer that fits in 256 bits.
func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %q", s)
	}
	if n.Sign() < 0 || n.Cmp(constants.MaxUint256) > 0 {
		return nil, fmt.Errorf("integer out of uint256 range: %s", n)
	}
	return n, nil
}
