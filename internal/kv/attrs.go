package kv

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Attrs holds an item's type-specific attributes.
//
// Backends hand values back in their decoded JSON/DynamoDB shapes (numbers as
// float64, lists as []any), so accessors accept the common representations.
type Attrs map[string]any

// String returns the string at key, or "" if missing.
func (a Attrs) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// StringPtr returns the string at key, or nil if missing or null.
func (a Attrs) StringPtr(key string) *string {
	if v, ok := a[key]; !ok || v == nil {
		return nil
	}
	s := a.String(key)
	return &s
}

// Int64 returns the integer at key, or 0 if missing.
func (a Attrs) Int64(key string) (int64, error) {
	switch v := a[key].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("attribute %s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("attribute %s: unexpected type %T", key, v)
	}
}

// Int64Ptr is Int64 that distinguishes missing (nil) from zero.
func (a Attrs) Int64Ptr(key string) (*int64, error) {
	if v, ok := a[key]; !ok || v == nil {
		return nil, nil
	}
	n, err := a.Int64(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Bool returns the boolean at key, false if missing.
func (a Attrs) Bool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// Decimal returns the decimal at key, zero if missing.
func (a Attrs) Decimal(key string) (decimal.Decimal, error) {
	switch v := a[key].(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("attribute %s: %w", key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Zero, fmt.Errorf("attribute %s: unexpected type %T", key, v)
	}
}

// Strings returns the string list at key, never nil.
func (a Attrs) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Map returns the nested attribute map at key, or nil.
func (a Attrs) Map(key string) Attrs {
	switch v := a[key].(type) {
	case map[string]any:
		return Attrs(v)
	case Attrs:
		return v
	default:
		return nil
	}
}

// List returns the list of nested attribute maps at key.
func (a Attrs) List(key string) []Attrs {
	switch v := a[key].(type) {
	case []map[string]any:
		out := make([]Attrs, 0, len(v))
		for _, m := range v {
			out = append(out, Attrs(m))
		}
		return out
	case []any:
		out := make([]Attrs, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, Attrs(m))
			}
		}
		return out
	default:
		return nil
	}
}

// normalize deep-copies attrs into their JSON-decoded shapes, matching what
// the persistent backends return.
func normalize(attrs Attrs) (Attrs, error) {
	if attrs == nil {
		return Attrs{}, nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}
	var out Attrs
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return out, nil
}
