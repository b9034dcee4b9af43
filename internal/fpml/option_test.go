package fpml

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"tradebook/internal/trade"
)

var optionClass = trade.Classification{Instrument: trade.InstrumentOption, Sub: trade.SubVanilla}

func TestOptionComputesTotalPremium(t *testing.T) {
	econ, err := Build(optionClass, Fields{
		"premiumPerUnit": json.Number("25.50"),
		"quantity":       json.Number("5000"),
		"exerciseStyle":  "European",
	})
	require.NoError(t, err)

	opt, ok := econ.Product().(CommodityOption)
	require.True(t, ok)
	assert.True(t, opt.Premium.TotalPremium.Equal(decimal.NewFromInt(127500)), opt.Premium.TotalPremium.String())
	assert.Nil(t, opt.ExerciseDates)

	doc := marshalEconomics(t, econ)
	assert.Equal(t, 127500.0, gjson.Get(doc, "commodityOption.premium.totalPremium").Float())
	assert.False(t, gjson.Get(doc, "commodityOption.exerciseDates").Exists())
}

func TestOptionKeepsSuppliedTotalPremium(t *testing.T) {
	econ, err := Build(optionClass, Fields{
		"premiumPerUnit": json.Number("25.50"),
		"quantity":       json.Number("5000"),
		"totalPremium":   json.Number("100000"),
		"exerciseStyle":  "American",
	})
	require.NoError(t, err)
	opt := econ.Product().(CommodityOption)
	assert.Equal(t, "100000", opt.Premium.TotalPremium.String())
}

func TestOptionInvalidExerciseStyle(t *testing.T) {
	for _, style := range []string{"Invalid", "", "european", "AMERICAN", "bermudan"} {
		_, err := Build(optionClass, Fields{"exerciseStyle": style})
		var semantic *trade.SemanticValidationError
		require.ErrorAs(t, err, &semantic, "style %q", style)
		assert.Equal(t, "exerciseStyle", semantic.Field)
	}
}

func TestOptionBermudanCarriesExerciseDates(t *testing.T) {
	econ, err := Build(optionClass, Fields{
		"exerciseStyle": " Bermudan ",
		"exerciseDates": []any{"2025-06-01", "2025-09-01", "2025-12-01"},
		"optionType":    "ignored",
	})
	require.NoError(t, err)
	doc := marshalEconomics(t, econ)
	assert.Equal(t, "Bermudan", gjson.Get(doc, "commodityOption.exerciseStyle").String())
	assert.Len(t, gjson.Get(doc, "commodityOption.exerciseDates").Array(), 3)
}

func TestOptionStyleFromOptionType(t *testing.T) {
	econ, err := Build(optionClass, Fields{"optionType": "American"})
	require.NoError(t, err)
	assert.Equal(t, "American", econ.Product().(CommodityOption).ExerciseStyle)
}
