package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/trade"
)

func TestClassifyPricing(t *testing.T) {
	cases := []struct {
		in   string
		inst trade.Instrument
		sub  trade.SubInstrument
	}{
		{"outright", trade.InstrumentSwap, trade.SubFixedFloat},
		{"crack_spread", trade.InstrumentSwap, trade.SubFloatFloat},
		{"future", trade.InstrumentFuture, trade.SubNone},
		{"  Calender_Spread_Strip ", trade.InstrumentSwap, trade.SubFixedFloat},
		{"physical_index_spread_box", trade.InstrumentPhysical, trade.SubIndexPhysical},
		{"option_collar", trade.InstrumentOption, trade.SubVanilla},
		{"swaption_strip", trade.InstrumentSwaption, trade.SubVanilla},
		{"cash", trade.InstrumentCash, trade.SubNone},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			cls, err := ClassifyPricing(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.inst, cls.Instrument)
			assert.Equal(t, tc.sub, cls.Sub)
		})
	}
}

func TestClassifyPricingKeepsNormalizedPattern(t *testing.T) {
	cls, err := ClassifyPricing(" CALENDER_SPREAD ")
	require.NoError(t, err)
	assert.Equal(t, "calender_spread", cls.Pattern)
}

func TestClassifyPricingUnknown(t *testing.T) {
	_, err := ClassifyPricing("bond")
	var unsupported *trade.UnsupportedInstrumentError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "bond", unsupported.Value)
}

func TestPricingPatternsCoverTable(t *testing.T) {
	patterns := PricingPatterns()
	assert.Len(t, patterns, 36)
	assert.Contains(t, patterns, "crack_spread_box")
}

func TestClassifyPair(t *testing.T) {
	cls, err := ClassifyPair("Swap", "fixed_float")
	require.NoError(t, err)
	assert.Equal(t, trade.Classification{Instrument: trade.InstrumentSwap, Sub: trade.SubFixedFloat}, cls)

	cls, err = ClassifyPair("option", "")
	require.NoError(t, err)
	assert.Equal(t, trade.SubVanilla, cls.Sub)

	cls, err = ClassifyPair("future", "none")
	require.NoError(t, err)
	assert.Equal(t, trade.SubNone, cls.Sub)
}

func TestClassifyPairErrors(t *testing.T) {
	_, err := ClassifyPair("bond", "")
	assert.ErrorIs(t, err, trade.ErrUnsupported)

	_, err = ClassifyPair("swap", "")
	var subErr *trade.UnsupportedSubInstrumentError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, trade.InstrumentSwap, subErr.Instrument)

	_, err = ClassifyPair("forward", "gasPhysical")
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "gasPhysical", subErr.Value)
}

func TestClassifierModes(t *testing.T) {
	rec := trade.NewRecord(map[string]any{
		"instrument":         "swap",
		"sub_instrument":     "floatFloat",
		"pricing_instrument": "calender_spread",
	})

	cls, err := New(ModePricing).Classify(rec)
	require.NoError(t, err)
	assert.Equal(t, trade.SubFixedFloat, cls.Sub)

	cls, err = New(ModePair).Classify(rec)
	require.NoError(t, err)
	assert.Equal(t, trade.SubFloatFloat, cls.Sub)
	assert.Equal(t, "calender_spread", cls.Pattern)
}

func TestClassifierPricingFallsBackToInstrument(t *testing.T) {
	rec := trade.NewRecord(map[string]any{"instrument": "outright"})
	cls, err := New("").Classify(rec)
	require.NoError(t, err)
	assert.Equal(t, trade.InstrumentSwap, cls.Instrument)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("PAIR")
	require.NoError(t, err)
	assert.Equal(t, ModePair, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePricing, m)

	_, err = ParseMode("guess")
	assert.Error(t, err)
}
