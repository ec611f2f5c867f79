package codec

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Decode decodes data as a one-element tuple holding a value of type t.
func Decode(data []byte, t Type) (Value, error) {
	values, err := DecodeTuple(data, []Type{t})
	if err != nil {
		return Value{}, err
	}
	return values[0], nil
}

// DecodeTuple decodes data as a fixed-arity tuple of the given types.
func DecodeTuple(data []byte, types []Type) ([]Value, error) {
	for i, t := range types {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}
	}
	d := &decoder{data: data, budget: decodeBudgetFactor * len(data)}
	return d.tuple(0, types, nil, "outputs")
}

// DecodeHex decodes a hex-encoded return value, with or without a 0x
// prefix. An empty payload decodes to an empty result rather than an error.
func DecodeHex(hexData string, types []Type) ([]Value, error) {
	data, err := HexToBytes(hexData)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []Value{}, nil
	}
	return DecodeTuple(data, types)
}

// HexToBytes strips an optional 0x prefix and hex-decodes the remainder.
func HexToBytes(hexData string) ([]byte, error) {
	s := strings.TrimSpace(hexData)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return data, nil
}

// decodeBudgetFactor bounds the string bytes and array element words a
// decode may materialise, as a multiple of the input length. A canonical
// encoding spends at most len(data), so only buffers whose offsets alias
// the same tail data many times run out.
const decodeBudgetFactor = 2

type decoder struct {
	data   []byte
	budget int
}

// charge spends n bytes of the decode budget.
func (d *decoder) charge(n int, path string) error {
	if n > d.budget {
		return fmt.Errorf("%w: %s: aliased offsets expand beyond %dx the %d byte input", ErrInvalidEncoding, path, decodeBudgetFactor, len(d.data))
	}
	d.budget -= n
	return nil
}

// tuple decodes the tuple region starting at base. Dynamic members hold an
// offset relative to base in their head slot. names, if given, label the
// members in error paths.
func (d *decoder) tuple(base int, types []Type, names []string, path string) ([]Value, error) {
	values := make([]Value, len(types))
	pos := base
	for i, t := range types {
		p := memberPath(path, names, i)
		start := pos
		if t.IsDynamic() {
			off, err := d.offset(pos, p)
			if err != nil {
				return nil, err
			}
			if off > len(d.data)-base {
				return nil, fmt.Errorf("%w: %s: offset %d beyond buffer of %d bytes", ErrTruncatedData, p, off, len(d.data))
			}
			start = base + off
		}
		v, err := d.value(start, t, p)
		if err != nil {
			return nil, err
		}
		values[i] = v
		pos += t.headSize()
	}
	return values, nil
}

// value decodes a value of type t whose encoding begins at start.
func (d *decoder) value(start int, t Type, path string) (Value, error) {
	switch t.Kind {
	case AddressKind:
		word, err := d.word(start, path)
		if err != nil {
			return Value{}, err
		}
		if !isZero(word[:wordSize-common.AddressLength]) {
			return Value{}, fmt.Errorf("%w: %s: dirty high bytes in address word", ErrInvalidEncoding, path)
		}
		return Value{Type: t, Address: common.BytesToAddress(word)}, nil

	case UintKind:
		word, err := d.word(start, path)
		if err != nil {
			return Value{}, err
		}
		n := new(big.Int).SetBytes(word)
		if n.BitLen() > t.Size {
			return Value{}, fmt.Errorf("%w: %s: value overflows %s", ErrInvalidEncoding, path, t)
		}
		return Value{Type: t, Uint: n}, nil

	case StringKind:
		n, err := d.length(start, path)
		if err != nil {
			return Value{}, err
		}
		raw, err := d.slice(start+wordSize, n, path)
		if err != nil {
			return Value{}, err
		}
		if err := d.charge(n, path); err != nil {
			return Value{}, err
		}
		if !utf8.Valid(raw) {
			return Value{}, fmt.Errorf("%w: %s: string is not valid UTF-8", ErrInvalidEncoding, path)
		}
		return Value{Type: t, Str: string(raw)}, nil

	case ArrayKind:
		count, err := d.length(start, path)
		if err != nil {
			return Value{}, err
		}
		// Every element needs at least one head word.
		if count > (len(d.data)-start-wordSize)/wordSize {
			return Value{}, fmt.Errorf("%w: %s: %d elements do not fit in buffer", ErrTruncatedData, path, count)
		}
		if err := d.charge(count*wordSize, path); err != nil {
			return Value{}, err
		}
		elems := make([]Type, count)
		for i := range elems {
			elems[i] = *t.Elem
		}
		items, err := d.tuple(start+wordSize, elems, nil, path)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Items: items}, nil

	case TupleKind:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = f.Name
		}
		items, err := d.tuple(start, fieldTypes(t.Fields), names, path)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Items: items}, nil
	}
	return Value{}, fmt.Errorf("%w: %s: unsupported kind %s", ErrInvalidEncoding, path, t.Kind)
}

func (d *decoder) word(pos int, path string) ([]byte, error) {
	return d.slice(pos, wordSize, path)
}

func (d *decoder) slice(pos, n int, path string) ([]byte, error) {
	if pos < 0 || n < 0 || pos > len(d.data) || n > len(d.data)-pos {
		return nil, fmt.Errorf("%w: %s: need %d bytes at offset %d, have %d", ErrTruncatedData, path, n, pos, len(d.data))
	}
	return d.data[pos : pos+n], nil
}

// length reads a word that must hold a count no larger than the buffer.
func (d *decoder) length(pos int, path string) (int, error) {
	word, err := d.word(pos, path)
	if err != nil {
		return 0, err
	}
	n := new(big.Int).SetBytes(word)
	if !n.IsInt64() || n.Int64() > int64(len(d.data)) {
		return 0, fmt.Errorf("%w: %s: length %s exceeds buffer of %d bytes", ErrTruncatedData, path, n, len(d.data))
	}
	return int(n.Int64()), nil
}

func (d *decoder) offset(pos int, path string) (int, error) {
	return d.length(pos, path)
}

func memberPath(parent string, names []string, i int) string {
	if i < len(names) {
		return fieldPath(parent, names[i], i)
	}
	return fmt.Sprintf("%s[%d]", parent, i)
}

func isZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}
