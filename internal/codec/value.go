package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Value is a typed ABI value. Type is the value's declared shape; which
// payload field is meaningful depends on Type.Kind:
//
//	AddressKind -> Address
//	UintKind    -> Uint
//	StringKind  -> Str
//	ArrayKind   -> Items (elements)
//	TupleKind   -> Items (fields, in declaration order)
type Value struct {
	Type    Type
	Address common.Address
	Uint    *big.Int
	Str     string
	Items   []Value
}

// Address wraps a 20-byte address.
func Address(addr common.Address) Value {
	return Value{Type: AddressType(), Address: addr}
}

// Uint256 wraps v as a uint256. The integer is copied.
func Uint256(v *big.Int) Value {
	return Value{Type: Uint256Type(), Uint: copyInt(v)}
}

// Uint wraps v as an unsigned integer of the given bit size.
func Uint(bits int, v *big.Int) (Value, error) {
	t, err := UintType(bits)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: t, Uint: copyInt(v)}, nil
}

// String wraps s as a dynamic string.
func String(s string) Value {
	return Value{Type: StringType(), Str: s}
}

// Array builds a dynamic array of elem. Elements are not checked here; a
// mismatching element is reported as ErrTypeMismatch when encoded.
func Array(elem Type, items ...Value) Value {
	return Value{Type: ArrayOf(elem), Items: copyValues(items)}
}

// Addresses is shorthand for an address[] value.
func Addresses(addrs ...common.Address) Value {
	items := make([]Value, len(addrs))
	for i, a := range addrs {
		items[i] = Address(a)
	}
	return Value{Type: ArrayOf(AddressType()), Items: items}
}

// Tuple builds a struct value of type t from its field values in order.
func Tuple(t Type, fields ...Value) Value {
	return Value{Type: t, Items: copyValues(fields)}
}

// Field returns the tuple field called name.
func (v Value) Field(name string) (Value, bool) {
	if v.Type.Kind != TupleKind {
		return Value{}, false
	}
	for i, f := range v.Type.Fields {
		if f.Name == name && i < len(v.Items) {
			return v.Items[i], true
		}
	}
	return Value{}, false
}

// Len returns the number of array elements or tuple fields.
func (v Value) Len() int {
	return len(v.Items)
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.Type.Kind {
	case AddressKind:
		return v.Address.Hex()
	case UintKind:
		if v.Uint == nil {
			return "<nil>"
		}
		return v.Uint.String()
	case StringKind:
		return fmt.Sprintf("%q", v.Str)
	case ArrayKind, TupleKind:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		if v.Type.Kind == ArrayKind {
			return "[" + strings.Join(parts, ", ") + "]"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "<invalid>"
	}
}

// check verifies that v can be encoded as the declared type t.
func (v Value) check(t Type, path string) error {
	if !v.Type.Equal(t) {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrTypeMismatch, path, t, v.Type)
	}
	switch t.Kind {
	case AddressKind, StringKind:
		if len(v.Items) != 0 || v.Uint != nil {
			return fmt.Errorf("%w: %s: %s value carries foreign payload", ErrTypeMismatch, path, t)
		}
	case UintKind:
		if v.Uint == nil {
			return fmt.Errorf("%w: %s: nil integer", ErrTypeMismatch, path)
		}
		if v.Uint.Sign() < 0 {
			return fmt.Errorf("%w: %s: negative value %s for %s", ErrTypeMismatch, path, v.Uint, t)
		}
		if v.Uint.BitLen() > t.Size {
			return fmt.Errorf("%w: %s: value %s overflows %s", ErrTypeMismatch, path, v.Uint, t)
		}
		if len(v.Items) != 0 {
			return fmt.Errorf("%w: %s: %s value carries foreign payload", ErrTypeMismatch, path, t)
		}
	case ArrayKind:
		for i, it := range v.Items {
			if err := it.check(*t.Elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case TupleKind:
		if len(v.Items) != len(t.Fields) {
			return fmt.Errorf("%w: %s: expected %d fields, got %d", ErrTypeMismatch, path, len(t.Fields), len(v.Items))
		}
		for i, f := range t.Fields {
			if err := v.Items[i].check(f.Type, fieldPath(path, f.Name, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func fieldPath(parent, name string, index int) string {
	if name == "" {
		return fmt.Sprintf("%s[%d]", parent, index)
	}
	return parent + "." + name
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func copyValues(vs []Value) []Value {
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}
