// Package metadata implements the tagged Value variant and the metadata
// map attached to every document.
package metadata

import (
	"encoding/json"
	"fmt"
)

// Kind tags which field of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindArray
)

// Value is a tagged union over String/Integer/Float/Boolean/Array/Null,
// mirroring the source's metadata::MetadataValue enum.
type Value struct {
	Kind    Kind
	Str     string
	Int     int64
	Float   float64
	Bool    bool
	Array   []Value
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Integer(i int64) Value  { return Value{Kind: KindInteger, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func Boolean(b bool) Value   { return Value{Kind: KindBoolean, Bool: b} }
func Array(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }
func Null() Value            { return Value{Kind: KindNull} }

// AsFloat64 promotes Integer/Float to float64 for numeric comparisons. The
// second return is false for non-numeric kinds.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Equal reports structural equality between two values.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindInteger:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindBoolean:
		return v.Bool == other.Bool
	case KindArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Map is the structured attribute bag carried by a Document.
type Map map[string]Value

type jsonValue struct {
	Kind  string      `json:"kind"`
	Str   string      `json:"str,omitempty"`
	Int   int64       `json:"int,omitempty"`
	Float float64     `json:"float,omitempty"`
	Bool  bool        `json:"bool,omitempty"`
	Array []jsonValue `json:"array,omitempty"`
}

func (v Value) toJSON() jsonValue {
	jv := jsonValue{}
	switch v.Kind {
	case KindString:
		jv.Kind, jv.Str = "string", v.Str
	case KindInteger:
		jv.Kind, jv.Int = "integer", v.Int
	case KindFloat:
		jv.Kind, jv.Float = "float", v.Float
	case KindBoolean:
		jv.Kind, jv.Bool = "boolean", v.Bool
	case KindArray:
		jv.Kind = "array"
		jv.Array = make([]jsonValue, len(v.Array))
		for i, e := range v.Array {
			jv.Array[i] = e.toJSON()
		}
	default:
		jv.Kind = "null"
	}
	return jv
}

func fromJSON(jv jsonValue) (Value, error) {
	switch jv.Kind {
	case "string":
		return String(jv.Str), nil
	case "integer":
		return Integer(jv.Int), nil
	case "float":
		return Float(jv.Float), nil
	case "boolean":
		return Boolean(jv.Bool), nil
	case "array":
		vs := make([]Value, len(jv.Array))
		for i, e := range jv.Array {
			v, err := fromJSON(e)
			if err != nil {
				return Value{}, err
			}
			vs[i] = v
		}
		return Array(vs), nil
	case "null", "":
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("metadata: unknown value kind %q", jv.Kind)
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toJSON())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	parsed, err := fromJSON(jv)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a loosely-typed Go value (as produced by encoding/json
// into an any, or passed directly from API callers) into a Value.
func FromAny(a any) Value {
	switch t := a.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Boolean(t)
	case int:
		return Integer(int64(t))
	case int64:
		return Integer(t)
	case float64:
		return Float(t)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = FromAny(e)
		}
		return Array(vs)
	default:
		return Null()
	}
}

// MapFromAny builds a Map from a map[string]any, as decoded from JSON.
func MapFromAny(m map[string]any) Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}
