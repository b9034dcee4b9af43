// Package maputil reads loosely typed values out of decoded JSON maps.
// Keys may be dotted paths ("fixedLeg.price") that walk nested maps.
package maputil

import (
	"fmt"
	"strings"

	"tradebook/internal/pkg/convert"

	"github.com/shopspring/decimal"
)

// Lookup resolves key in params, first as a literal key, then as a dotted path.
func Lookup(params map[string]any, key string) (any, bool) {
	if params == nil {
		return nil, false
	}
	if v, ok := params[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}
	head, rest, _ := strings.Cut(key, ".")
	child, ok := params[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return Lookup(child, rest)
}

func Has(params map[string]any, key string) bool {
	v, ok := Lookup(params, key)
	return ok && v != nil
}

func String(params map[string]any, key string) string {
	raw, ok := Lookup(params, key)
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", raw))
}

func Decimal(params map[string]any, key string) (decimal.Decimal, bool) {
	raw, ok := Lookup(params, key)
	if !ok {
		return decimal.Zero, false
	}
	return convert.ToDecimal(raw)
}

func Bool(params map[string]any, key string) (bool, bool) {
	raw, ok := Lookup(params, key)
	if !ok {
		return false, false
	}
	return convert.ToBool(raw)
}

func Map(params map[string]any, key string) map[string]any {
	raw, ok := Lookup(params, key)
	if !ok {
		return nil
	}
	m, _ := raw.(map[string]any)
	return m
}

// Maps returns the map elements of a list value, skipping anything else.
func Maps(params map[string]any, key string) []map[string]any {
	raw, ok := Lookup(params, key)
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func StringSlice(params map[string]any, key string) []string {
	raw, ok := Lookup(params, key)
	if !ok || raw == nil {
		return nil
	}
	switch val := raw.(type) {
	case []string:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			str := strings.TrimSpace(fmt.Sprintf("%v", item))
			if str != "" {
				out = append(out, str)
			}
		}
		return out
	default:
		parts := strings.Split(fmt.Sprintf("%v", val), ",")
		out := make([]string, 0, len(parts))
		for _, item := range parts {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
}
