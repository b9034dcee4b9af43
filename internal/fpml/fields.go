package fpml

import (
	"tradebook/internal/pkg/maputil"

	"github.com/shopspring/decimal"
)

// Fields is a mapped trade record: keys already renamed to message names.
type Fields map[string]any

func (f Fields) Has(key string) bool { return maputil.Has(f, key) }

func (f Fields) String(key string) string { return maputil.String(f, key) }

// First returns the first non-empty string among keys.
func (f Fields) First(keys ...string) string {
	for _, k := range keys {
		if s := f.String(k); s != "" {
			return s
		}
	}
	return ""
}

// StringOr returns the value of key or def when absent or empty.
func (f Fields) StringOr(key, def string) string {
	if s := f.String(key); s != "" {
		return s
	}
	return def
}

// Number returns the first parsable decimal among keys, zero otherwise.
func (f Fields) Number(keys ...string) Number {
	d, _ := f.decimal(keys...)
	return Number{d}
}

// OptionalNumber is Number that returns nil when none of keys holds a number.
func (f Fields) OptionalNumber(keys ...string) *Number {
	d, ok := f.decimal(keys...)
	if !ok {
		return nil
	}
	return &Number{d}
}

func (f Fields) decimal(keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		if d, ok := maputil.Decimal(f, k); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func (f Fields) BoolOr(key string, def bool) bool {
	if b, ok := maputil.Bool(f, key); ok {
		return b
	}
	return def
}

func (f Fields) Strings(key string) []string { return maputil.StringSlice(f, key) }

func (f Fields) Map(key string) Fields { return Fields(maputil.Map(f, key)) }

func (f Fields) Maps(key string) []Fields {
	raw := maputil.Maps(f, key)
	out := make([]Fields, len(raw))
	for i, m := range raw {
		out[i] = Fields(m)
	}
	return out
}
