package codec

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorSize is the length of a function selector in bytes.
const SelectorSize = 4

// Signature returns the canonical signature string, e.g.
// "findByOwner(address[],address,uint256)".
func Signature(name string, inputs []Type) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	parts := make([]string, len(inputs))
	for i, t := range inputs {
		if err := t.validate(); err != nil {
			return "", fmt.Errorf("input %d: %w", i, err)
		}
		parts[i] = t.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")", nil
}

// Selector returns the first four bytes of the Keccak-256 hash of the
// function's canonical signature.
func Selector(name string, inputs []Type) ([SelectorSize]byte, error) {
	sig, err := Signature(name, inputs)
	if err != nil {
		return [SelectorSize]byte{}, err
	}
	return SelectorFromSignature(sig)
}

// SelectorFromSignature hashes an already canonical signature string.
func SelectorFromSignature(signature string) ([SelectorSize]byte, error) {
	open := strings.IndexByte(signature, '(')
	if open < 0 || !strings.HasSuffix(signature, ")") {
		return [SelectorSize]byte{}, fmt.Errorf("%w: malformed signature %q", ErrInvalidSignature, signature)
	}
	if err := validateName(signature[:open]); err != nil {
		return [SelectorSize]byte{}, err
	}
	var sel [SelectorSize]byte
	copy(sel[:], crypto.Keccak256([]byte(signature))[:SelectorSize])
	return sel, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty function name", ErrInvalidSignature)
	}
	if strings.ContainsAny(name, "(), \t\n") {
		return fmt.Errorf("%w: function name %q contains reserved characters", ErrInvalidSignature, name)
	}
	return nil
}
