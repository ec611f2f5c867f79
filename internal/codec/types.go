package codec

import (
	"fmt"
	"strings"
)

// wordSize is the width of every ABI head slot.
const wordSize = 32

// Kind enumerates the ABI type variants the codec understands.
type Kind int

const (
	AddressKind Kind = iota + 1
	UintKind
	StringKind
	ArrayKind
	TupleKind
)

func (k Kind) String() string {
	switch k {
	case AddressKind:
		return "address"
	case UintKind:
		return "uint"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case TupleKind:
		return "tuple"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type describes the shape of an ABI value. It carries structure only, never
// data, so decoding always knows in advance how many bytes and which nested
// regions to expect.
type Type struct {
	Kind   Kind
	Size   int     // bit width, UintKind only
	Elem   *Type   // element type, ArrayKind only
	Fields []Field // components, TupleKind only
}

// Field is a named component of a tuple type.
type Field struct {
	Name string
	Type Type
}

// AddressType returns the 20-byte address type.
func AddressType() Type {
	return Type{Kind: AddressKind}
}

// UintType returns an unsigned integer type of the given bit size. Sizes must
// be a multiple of 8 between 8 and 256.
func UintType(bits int) (Type, error) {
	if bits <= 0 || bits > 256 || bits%8 != 0 {
		return Type{}, fmt.Errorf("%w: invalid uint size %d", ErrInvalidSignature, bits)
	}
	return Type{Kind: UintKind, Size: bits}, nil
}

// Uint256Type returns uint256.
func Uint256Type() Type {
	return Type{Kind: UintKind, Size: 256}
}

// StringType returns the dynamic UTF-8 string type.
func StringType() Type {
	return Type{Kind: StringKind}
}

// ArrayOf returns a dynamic array type over elem.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: ArrayKind, Elem: &e}
}

// TupleOf returns a struct type with the given ordered fields.
func TupleOf(fields ...Field) Type {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Type{Kind: TupleKind, Fields: fs}
}

// String returns the canonical type string used in function signatures.
func (t Type) String() string {
	switch t.Kind {
	case AddressKind:
		return "address"
	case UintKind:
		return fmt.Sprintf("uint%d", t.Size)
	case StringKind:
		return "string"
	case ArrayKind:
		if t.Elem == nil {
			return "<invalid>[]"
		}
		return t.Elem.String() + "[]"
	case TupleKind:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Type.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "<invalid>"
	}
}

// IsDynamic reports whether values of t are encoded in the tail region.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case StringKind, ArrayKind:
		return true
	case TupleKind:
		for _, f := range t.Fields {
			if f.Type.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// Equal reports whether t and o describe the same shape. Field names are
// ignored; only the component types and their order matter.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case UintKind:
		return t.Size == o.Size
	case ArrayKind:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	case TupleKind:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
	}
	return true
}

// headSize is the number of bytes t occupies in its parent's head.
func (t Type) headSize() int {
	if t.Kind == TupleKind && !t.IsDynamic() {
		n := 0
		for _, f := range t.Fields {
			n += f.Type.headSize()
		}
		return n
	}
	return wordSize
}

func (t Type) validate() error {
	switch t.Kind {
	case AddressKind, StringKind:
		return nil
	case UintKind:
		if t.Size <= 0 || t.Size > 256 || t.Size%8 != 0 {
			return fmt.Errorf("%w: invalid uint size %d", ErrInvalidSignature, t.Size)
		}
		return nil
	case ArrayKind:
		if t.Elem == nil {
			return fmt.Errorf("%w: array without element type", ErrInvalidSignature)
		}
		return t.Elem.validate()
	case TupleKind:
		for _, f := range t.Fields {
			if err := f.Type.validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidSignature, int(t.Kind))
	}
}

func headSizeOf(types []Type) int {
	n := 0
	for _, t := range types {
		n += t.headSize()
	}
	return n
}

func fieldTypes(fields []Field) []Type {
	types := make([]Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}
	return types
}
