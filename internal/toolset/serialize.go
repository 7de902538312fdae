package toolset

import (
	"encoding/json"
	"fmt"
	"reflect"

	"toolbelt/internal/domain"
)

// serializeParams normalizes heterogeneous parameter values into plain JSON
// shapes: primitives pass through, structured payloads are rendered to their
// canonical map form, sequences and mappings recurse element-wise. Any value
// without a defined serialization is a hard error.
func serializeParams(params map[string]any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	out, err := serializeValue(params)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func serializeValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case json.Marshaler:
		return marshalStructured(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			serialized, err := serializeValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = serialized
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			serialized, err := serializeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = serialized
		}
		return out, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			serialized, err := serializeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = serialized
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, unsupportedParam(value)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			serialized, err := serializeValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = serialized
		}
		return out, nil
	case reflect.Struct:
		return marshalStructured(value)
	default:
		return nil, unsupportedParam(value)
	}
}

// marshalStructured renders a structured payload through its JSON encoding.
func marshalStructured(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, unsupportedParam(value)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, unsupportedParam(value)
	}
	return out, nil
}

func unsupportedParam(value any) error {
	return domain.E(domain.CodeInvalidArgument, "toolset.serializeParams",
		fmt.Sprintf("no serialization for value of type %T", value), domain.ErrUnsupportedParam)
}
