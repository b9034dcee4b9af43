// Package convert provides type conversion utilities.
package convert

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimal converts numeric values and numeric strings to a decimal.
// ok is false for nil, NaN/Inf and unparsable input.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		return ToDecimal(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case int32:
		return decimal.NewFromInt(int64(t)), true
	case uint64:
		return decimal.NewFromUint64(t), true
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(t), ",", ""))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// ToBool accepts booleans and the usual textual spellings ("true", "yes", "1").
func ToBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return false, false
	case json.Number:
		n, err := strconv.ParseFloat(t.String(), 64)
		return n != 0, err == nil
	case int:
		return t != 0, true
	case float64:
		return t != 0, true
	default:
		return false, false
	}
}
