package dto

import (
	"encoding/json"
	"fmt"
)

type MetadataKind int

const (
	MetadataNull MetadataKind = iota
	MetadataString
	MetadataNumber
	MetadataBool
	MetadataArray
	MetadataObject
)

// MetadataValue holds one node of the free-form metadata object attached to a
// source document. Exactly the field matching Kind is meaningful.
type MetadataValue struct {
	Kind   MetadataKind
	String string
	Number float64
	Bool   bool
	Array  []MetadataValue
	Object map[string]MetadataValue
}

func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := metadataFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v MetadataValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Interface converts the value back to plain Go types (nil, string, float64, bool, []interface{}, map[string]interface{}).
func (v MetadataValue) Interface() interface{} {
	switch v.Kind {
	case MetadataString:
		return v.String
	case MetadataNumber:
		return v.Number
	case MetadataBool:
		return v.Bool
	case MetadataArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.Interface()
		}
		return out
	case MetadataObject:
		out := make(map[string]interface{}, len(v.Object))
		for k, item := range v.Object {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

func metadataFromAny(raw interface{}) (MetadataValue, error) {
	switch t := raw.(type) {
	case nil:
		return MetadataValue{Kind: MetadataNull}, nil
	case string:
		return MetadataValue{Kind: MetadataString, String: t}, nil
	case float64:
		return MetadataValue{Kind: MetadataNumber, Number: t}, nil
	case bool:
		return MetadataValue{Kind: MetadataBool, Bool: t}, nil
	case []interface{}:
		arr := make([]MetadataValue, len(t))
		for i, item := range t {
			v, err := metadataFromAny(item)
			if err != nil {
				return MetadataValue{}, err
			}
			arr[i] = v
		}
		return MetadataValue{Kind: MetadataArray, Array: arr}, nil
	case map[string]interface{}:
		obj := make(map[string]MetadataValue, len(t))
		for k, item := range t {
			v, err := metadataFromAny(item)
			if err != nil {
				return MetadataValue{}, err
			}
			obj[k] = v
		}
		return MetadataValue{Kind: MetadataObject, Object: obj}, nil
	default:
		return MetadataValue{}, fmt.Errorf("unsupported metadata value of type %T", raw)
	}
}
