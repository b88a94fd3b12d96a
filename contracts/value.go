package contracts

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies the scalar type stored in a Value.
type ValueKind string

const (
	// ValueString marks a string entry.
	ValueString ValueKind = "string"
	// ValueInt marks an integer entry.
	ValueInt ValueKind = "int"
)

// Value is a typed scalar entry of a MapMessage. The kind tag travels with
// the value so integer entries survive JSON transport instead of collapsing
// into float64 on decode.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
}

// StringValue wraps a string as a typed entry.
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

// IntValue wraps an integer as a typed entry.
func IntValue(i int64) Value {
	return Value{Kind: ValueInt, Int: i}
}

// String renders the stored scalar for display.
func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	default:
		return v.Str
	}
}

type valueJSON struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"kind":..., "value":...}.
func (v Value) MarshalJSON() ([]byte, error) {
	var raw []byte
	var err error
	switch v.Kind {
	case ValueString:
		raw, err = json.Marshal(v.Str)
	case ValueInt:
		raw, err = json.Marshal(v.Int)
	default:
		return nil, fmt.Errorf("marshal value: %w: %q", ErrUnknownValueKind, v.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal %s value: %w", v.Kind, err)
	}
	return json.Marshal(valueJSON{Kind: v.Kind, Value: raw})
}

// UnmarshalJSON decodes a value produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var aux valueJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	switch aux.Kind {
	case ValueString:
		var s string
		if err := json.Unmarshal(aux.Value, &s); err != nil {
			return fmt.Errorf("unmarshal string value: %w", err)
		}
		*v = StringValue(s)
	case ValueInt:
		var i int64
		if err := json.Unmarshal(aux.Value, &i); err != nil {
			return fmt.Errorf("unmarshal int value: %w", err)
		}
		*v = IntValue(i)
	default:
		return fmt.Errorf("unmarshal value: %w: %q", ErrUnknownValueKind, aux.Kind)
	}
	return nil
}
