package maputil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() map[string]any {
	return map[string]any{
		"fixedLeg": map[string]any{
			"price":         json.Number("72.5"),
			"payRelativeTo": "CalculationPeriodEndDate",
		},
		"fixedLeg.price": json.Number("99"),
		"resetDates":     []any{"2024-01-31", " ", "2024-02-29"},
		"hasFixedLeg":    "yes",
		"steps":          []any{map[string]any{"q": 1}, "junk"},
		"quantity":       json.Number("10000"),
		"absent":         nil,
	}
}

func TestLookupPrefersLiteralKey(t *testing.T) {
	v, ok := Lookup(sample(), "fixedLeg.price")
	require.True(t, ok)
	assert.Equal(t, json.Number("99"), v)

	assert.Equal(t, "CalculationPeriodEndDate", String(sample(), "fixedLeg.payRelativeTo"))
	_, ok = Lookup(sample(), "fixedLeg.missing.deeper")
	assert.False(t, ok)
}

func TestTypedAccessors(t *testing.T) {
	p := sample()
	q, ok := Decimal(p, "quantity")
	require.True(t, ok)
	assert.Equal(t, "10000", q.String())

	b, ok := Bool(p, "hasFixedLeg")
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, []string{"2024-01-31", "2024-02-29"}, StringSlice(p, "resetDates"))
	assert.Len(t, Maps(p, "steps"), 1)
	assert.Equal(t, "10000", String(p, "quantity"))
	assert.False(t, Has(p, "absent"))
	assert.Nil(t, Map(p, "quantity"))
}
