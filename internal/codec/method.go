package codec

import "fmt"

// Method statically describes a contract function: its name, the declared
// input types and the shape of its return tuple.
type Method struct {
	Name    string
	Inputs  []Type
	Outputs []Type
}

// Signature returns the canonical signature, e.g. "balanceOf(address)".
func (m Method) Signature() (string, error) {
	return Signature(m.Name, m.Inputs)
}

// Selector returns the 4-byte function selector.
func (m Method) Selector() ([SelectorSize]byte, error) {
	return Selector(m.Name, m.Inputs)
}

// NewCall binds args to the method's declared inputs. Arguments are checked
// against the declared types when the call is encoded.
func (m Method) NewCall(args ...Value) FunctionCall {
	inputs := make([]Type, len(m.Inputs))
	copy(inputs, m.Inputs)
	return FunctionCall{name: m.Name, inputs: inputs, args: copyValues(args)}
}

// Pack encodes a call to m with args.
func (m Method) Pack(args ...Value) ([]byte, error) {
	return EncodeCall(m.NewCall(args...))
}

// DecodeOutputs decodes a hex-encoded return value against m.Outputs.
func (m Method) DecodeOutputs(hexData string) ([]Value, error) {
	values, err := DecodeHex(hexData, m.Outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s outputs: %w", m.Name, err)
	}
	return values, nil
}
