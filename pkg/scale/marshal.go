package scale

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	json "github.com/nspcc-dev/go-ordered-json"
)

// JSONValue converts a decoded value into a JSON-friendly form keeping field
// order: composites and variants with fields become ordered objects, field-less
// variants become their names, byte strings become 0x-hex and big integers
// become decimal numbers.
func JSONValue(v any) any {
	switch val := v.(type) {
	case *Composite:
		if len(val.Fields) != 0 && val.Fields[0].Name == "" {
			arr := make([]any, len(val.Fields))
			for i := range val.Fields {
				arr[i] = JSONValue(val.Fields[i].Value)
			}
			return arr
		}
		obj := make(json.OrderedObject, 0, len(val.Fields))
		for _, f := range val.Fields {
			obj = append(obj, json.Member{Key: f.Name, Value: JSONValue(f.Value)})
		}
		return obj
	case *Variant:
		if len(val.Fields) == 0 {
			return val.Name
		}
		var inner any
		if len(val.Fields) == 1 && val.Fields[0].Name == "" {
			inner = JSONValue(val.Fields[0].Value)
		} else {
			inner = JSONValue(&Composite{Fields: val.Fields})
		}
		return json.OrderedObject{{Key: val.Name, Value: inner}}
	case []any:
		arr := make([]any, len(val))
		for i := range val {
			arr[i] = JSONValue(val[i])
		}
		return arr
	case []byte:
		return "0x" + hex.EncodeToString(val)
	case *uint256.Int:
		if val == nil {
			return nil
		}
		return json.Number(val.ToBig().String())
	case *big.Int:
		if val == nil {
			return nil
		}
		return json.Number(val.String())
	case *BitSequence:
		return json.OrderedObject{
			{Key: "len", Value: val.Len},
			{Key: "data", Value: "0x" + hex.EncodeToString(val.Data)},
		}
	case map[string]any:
		obj := make(json.OrderedObject, 0, len(val))
		for _, k := range sortedKeys(val) {
			obj = append(obj, json.Member{Key: k, Value: JSONValue(val[k])})
		}
		return obj
	case interface{ BytesBE() []byte }:
		return "0x" + hex.EncodeToString(val.BytesBE())
	}
	return v
}

// MarshalValue renders a decoded value as JSON, see JSONValue.
func MarshalValue(v any) ([]byte, error) {
	return json.Marshal(JSONValue(v))
}

// ParseValue parses a JSON argument keeping object field order and number
// precision, non-JSON input is returned as a plain string.
func ParseValue(s string) any {
	d := json.NewDecoder(strings.NewReader(s))
	d.UseOrderedObject()
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil || d.More() {
		return s
	}
	return v
}
