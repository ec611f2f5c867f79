package codec

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// FunctionCall is an immutable function name plus its ordered arguments.
type FunctionCall struct {
	name   string
	inputs []Type
	args   []Value
}

// NewFunctionCall builds a call whose declared input types are the
// arguments' own types.
func NewFunctionCall(name string, args ...Value) FunctionCall {
	inputs := make([]Type, len(args))
	for i, a := range args {
		inputs[i] = a.Type
	}
	return FunctionCall{name: name, inputs: inputs, args: copyValues(args)}
}

// Name returns the function name.
func (c FunctionCall) Name() string { return c.name }

// Inputs returns a copy of the declared input types.
func (c FunctionCall) Inputs() []Type {
	out := make([]Type, len(c.inputs))
	copy(out, c.inputs)
	return out
}

// Args returns a copy of the arguments.
func (c FunctionCall) Args() []Value { return copyValues(c.args) }

// Signature returns the canonical signature of the call.
func (c FunctionCall) Signature() (string, error) {
	return Signature(c.name, c.inputs)
}

// EncodeCall returns selector ++ tuple(args).
func EncodeCall(call FunctionCall) ([]byte, error) {
	sel, err := Selector(call.name, call.inputs)
	if err != nil {
		return nil, err
	}
	body, err := EncodeTuple(call.inputs, call.args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s arguments: %w", call.name, err)
	}
	out := make([]byte, 0, SelectorSize+len(body))
	out = append(out, sel[:]...)
	return append(out, body...), nil
}

// EncodeTuple encodes values as a fixed-arity tuple of the given types. No
// length prefix is written.
func EncodeTuple(types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrTypeMismatch, len(types), len(values))
	}
	for i, v := range values {
		if err := types[i].validate(); err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		if err := v.check(types[i], fmt.Sprintf("args[%d]", i)); err != nil {
			return nil, err
		}
	}
	return encodeTuple(types, values), nil
}

// Encode encodes a single value as the lone member of a tuple.
func Encode(v Value) ([]byte, error) {
	return EncodeTuple([]Type{v.Type}, []Value{v})
}

// encodeTuple lays out head slots followed by the tail. Offsets written in
// the head are relative to the first byte of this tuple.
func encodeTuple(types []Type, values []Value) []byte {
	headLen := headSizeOf(types)
	head := make([]byte, 0, headLen)
	var tail []byte
	for i, t := range types {
		if t.IsDynamic() {
			head = append(head, encodeLength(headLen+len(tail))...)
			tail = append(tail, encodeValue(t, values[i])...)
			continue
		}
		head = append(head, encodeValue(t, values[i])...)
	}
	return append(head, tail...)
}

// encodeValue assumes v was already checked against t.
func encodeValue(t Type, v Value) []byte {
	switch t.Kind {
	case AddressKind:
		return leftPad32(v.Address.Bytes())
	case UintKind:
		return math.PaddedBigBytes(v.Uint, wordSize)
	case StringKind:
		data := []byte(v.Str)
		out := encodeLength(len(data))
		return append(out, padRight(data)...)
	case ArrayKind:
		elems := make([]Type, len(v.Items))
		for i := range elems {
			elems[i] = *t.Elem
		}
		out := encodeLength(len(v.Items))
		return append(out, encodeTuple(elems, v.Items)...)
	case TupleKind:
		return encodeTuple(fieldTypes(t.Fields), v.Items)
	}
	return nil
}

func encodeLength(n int) []byte {
	return math.PaddedBigBytes(big.NewInt(int64(n)), wordSize)
}

func leftPad32(b []byte) []byte {
	out := make([]byte, wordSize)
	copy(out[wordSize-len(b):], b)
	return out
}

func padRight(b []byte) []byte {
	n := (len(b) + wordSize - 1) / wordSize * wordSize
	out := make([]byte, n)
	copy(out, b)
	return out
}
