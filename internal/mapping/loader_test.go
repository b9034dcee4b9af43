package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/trade"
)

func TestDefaultTables(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)

	to, ok := tables.Global().Lookup("buy_sell")
	require.True(t, ok)
	assert.Equal(t, "buySell", to)

	entries := tables.Global().Entries()
	assert.Equal(t, "buy_sell", entries[0].From, "file order is kept")

	to, _ = tables.Combined(trade.InstrumentSwap).Lookup("currency")
	assert.Equal(t, "settlementCurrency", to)
	to, _ = tables.Combined(trade.InstrumentOption).Lookup("option_type")
	assert.Equal(t, "exerciseStyle", to)
	to, _ = tables.Combined(trade.InstrumentFX).Lookup("currency")
	assert.Equal(t, "notionalCurrency", to)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing global":     "instruments: {}\n",
		"non string target":  "global:\n  qty: 5\n",
		"unknown instrument": "global: {}\ninstruments:\n  bond:\n    a: b\n",
		"unknown section":    "global: {}\nextra: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.yaml")
	doc := "global:\n  z_key: zed\n  a_key: ay\ninstruments:\n  cash:\n    amount: paymentAmount\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tables, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{From: "z_key", To: "zed"}, {From: "a_key", To: "ay"}}, tables.Global().Entries())
	to, _ := tables.Instrument(trade.InstrumentCash).Lookup("amount")
	assert.Equal(t, "paymentAmount", to)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, trade.ErrIO)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	tables, err := Load("  ")
	require.NoError(t, err)
	assert.Greater(t, tables.Global().Len(), 10)
}
