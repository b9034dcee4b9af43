package booking

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"tradebook/internal/classify"
	"tradebook/internal/decompose"
	"tradebook/internal/envelope"
	"tradebook/internal/mapping"
	"tradebook/internal/trade"
	"tradebook/internal/validate"
)

const swapRecord = `{
  "tradeType": "newTrade",
  "pricing_instrument": "outright",
  "trade_id": "SWAP-001",
  "trade_date": "2024-01-15",
  "counterparty": {"internal": "BANK", "external": "CLIENT"},
  "portfolio": {"internal": "P1", "external": "P2"},
  "traders": {"internal": "T1", "external": "T2"},
  "buy_sell": "Buy",
  "quantity": 10000,
  "unit": "barrels",
  "currency": "USD",
  "fixed_leg_price": 75.25
}`

// swapWith returns swapRecord with top-level keys overridden.
func swapWith(t *testing.T, overrides map[string]any) []byte {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(swapRecord), &rec))
	for k, v := range overrides {
		rec[k] = v
	}
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	return out
}

var hexChecksum = regexp.MustCompile(`^[0-9a-f]{64}$`)

func fixedClock() time.Time { return time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC) }

func newTestService(t *testing.T, mode classify.Mode, d *Dispatcher) *Service {
	t.Helper()
	tables, err := mapping.Default()
	require.NoError(t, err)
	c := classify.New(mode)
	svc, err := NewService(
		validate.New(c),
		c,
		decompose.New(),
		tables,
		envelope.NewBuilder(envelope.WithClock(fixedClock)),
		d,
		Options{Workers: 2},
	)
	require.NoError(t, err)
	return svc
}

func TestProcessSwapEndToEnd(t *testing.T) {
	svc := newTestService(t, classify.ModePricing, nil)

	batch, err := svc.Process("swap.json", []byte(swapRecord))
	require.NoError(t, err)
	require.NoError(t, batch.Err())
	require.Len(t, batch.Results, 1)
	assert.Equal(t, "SWAP-001", batch.TradeID)
	assert.Equal(t, "swap/fixedFloat", batch.Class.String())

	msg := batch.Results[0].Message
	require.NotNil(t, msg)
	assert.Regexp(t, hexChecksum, msg.Checksum())
	require.NoError(t, msg.Verify())

	body, err := msg.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, int64(10000), gjson.GetBytes(body, "tradeEconomics.commoditySwap.notionalQuantity.quantity").Int())
	assert.Equal(t, "barrels", gjson.GetBytes(body, "tradeEconomics.commoditySwap.notionalQuantity.unit").String())
	assert.Equal(t, "Buy", gjson.GetBytes(body, "tradeEconomics.commoditySwap.buySell").String())
	assert.Equal(t, "USD", gjson.GetBytes(body, "tradeEconomics.commoditySwap.settlementCurrency").String())
	assert.Equal(t, "SWAP-001", gjson.GetBytes(body, "tradeHeader.partyTradeIdentifier.tradeId").String())
	assert.Equal(t, msg.Checksum(), gjson.GetBytes(body, "messageFooter.checksum").String())
}

func TestProcessHeaderDefaultsAndOverrides(t *testing.T) {
	svc := newTestService(t, classify.ModePricing, nil)

	batch, err := svc.Process("swap.json", []byte(swapRecord))
	require.NoError(t, err)
	h := batch.Results[0].Message.Header()
	assert.Equal(t, "newTrade", h.MessageType)
	assert.Equal(t, DefaultSender, h.SenderCompID)
	assert.Equal(t, DefaultTarget, h.TargetCompID)
	assert.Equal(t, "2024-01-15T09:30:00.000000Z", h.SendingTime)

	withParties := swapWith(t, map[string]any{"sender": "DESK", "target": "BOOK"})
	batch, err = svc.Process("swap.json", withParties)
	require.NoError(t, err)
	h = batch.Results[0].Message.Header()
	assert.Equal(t, "DESK", h.SenderCompID)
	assert.Equal(t, "BOOK", h.TargetCompID)
}

func TestProcessIsDeterministic(t *testing.T) {
	svc := newTestService(t, classify.ModePricing, nil)
	a, err := svc.Process("a", []byte(swapRecord))
	require.NoError(t, err)
	b, err := svc.Process("b", []byte(swapRecord))
	require.NoError(t, err)
	assert.Equal(t, a.Results[0].Message.Checksum(), b.Results[0].Message.Checksum())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestProcessCalendarSpreadKeepsUnitOrder(t *testing.T) {
	svc := newTestService(t, classify.ModePricing, nil)
	rec := swapWith(t, map[string]any{
		"pricing_instrument": "calender_spread",
		"effective_date":     "2024-01-01",
		"termination_date":   "2024-12-31",
	})

	batch, err := svc.Process("spread.json", rec)
	require.NoError(t, err)
	require.NoError(t, batch.Err())
	require.Len(t, batch.Results, 2)

	for i, want := range []string{"2024-01-01", "2024-07-01"} {
		res := batch.Results[i]
		assert.Equal(t, i+1, res.Number())
		body, err := res.Message.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, want, gjson.GetBytes(body, "tradeEconomics.commoditySwap.effectiveDate.adjustableDate.unadjustedDate").String())
	}
	assert.Len(t, batch.Messages(), 2)
}

func TestProcessCalendarSpreadWithFpMLDates(t *testing.T) {
	svc := newTestService(t, classify.ModePricing, nil)
	rec := swapWith(t, map[string]any{
		"pricing_instrument":             "calender_spread",
		"effectiveDate.unadjustedDate":   "2024-01-01",
		"terminationDate.unadjustedDate": "2024-12-31",
	})

	batch, err := svc.Process("spread.json", rec)
	require.NoError(t, err)
	require.NoError(t, batch.Err())
	require.Len(t, batch.Results, 2)

	var periods []string
	for _, res := range batch.Results {
		body, err := res.Message.MarshalJSON()
		require.NoError(t, err)
		swap := gjson.GetBytes(body, "tradeEconomics.commoditySwap")
		periods = append(periods,
			swap.Get("effectiveDate.adjustableDate.unadjustedDate").String()+".."+
				swap.Get("terminationDate.adjustableDate.unadjustedDate").String())
	}
	assert.Equal(t, []string{"2024-01-01..2024-07-01", "2024-07-01..2024-12-31"}, periods)
	assert.NotEqual(t, batch.Results[0].Message.Checksum(), batch.Results[1].Message.Checksum())
}

func TestProcessRejectsRecord(t *testing.T) {
	svc := newTestService(t, classify.ModePricing, nil)

	_, err := svc.Process("bad.json", []byte(`{"trade_id":"X"}`))
	assert.ErrorIs(t, err, trade.ErrStructural)
	assert.Contains(t, err.Error(), "bad.json")

	unknown := swapWith(t, map[string]any{"pricing_instrument": "mystery"})
	_, err = svc.Process("unknown.json", unknown)
	var unsupported *trade.UnsupportedInstrumentError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "mystery", unsupported.Value)
}

func TestProcessUnitFailureIsKeptOnBatch(t *testing.T) {
	svc := newTestService(t, classify.ModePair, nil)
	rec := `{
  "tradeType": "newTrade",
  "instrument": "option",
  "sub_instrument": "vanilla",
  "trade_id": "OPT-1",
  "counterparty": {"internal": "BANK", "external": "CLIENT"},
  "portfolio": {"internal": "P1", "external": "P2"},
  "traders": {"internal": "T1", "external": "T2"},
  "option_type": "Asian",
  "quantity": 5000,
  "premium_per_unit": 25.50
}`
	batch, err := svc.Process("opt.json", []byte(rec))
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.Nil(t, batch.Results[0].Message)

	var unitErr *UnitError
	require.ErrorAs(t, batch.Err(), &unitErr)
	assert.Equal(t, "OPT-1", unitErr.TradeID)
	assert.Equal(t, 1, unitErr.Unit)
	var semantic *trade.SemanticValidationError
	require.True(t, errors.As(batch.Err(), &semantic))
	assert.Equal(t, "exerciseStyle", semantic.Field)
}

func TestProcessOptionPremium(t *testing.T) {
	svc := newTestService(t, classify.ModePair, nil)
	rec := `{
  "tradeType": "newTrade",
  "instrument": "option",
  "sub_instrument": "vanilla",
  "trade_id": "OPT-2",
  "counterparty": {"internal": "BANK", "external": "CLIENT"},
  "portfolio": {"internal": "P1", "external": "P2"},
  "traders": {"internal": "T1", "external": "T2"},
  "option_type": "European",
  "quantity": 5000,
  "premium_per_unit": 25.50
}`
	batch, err := svc.Process("opt.json", []byte(rec))
	require.NoError(t, err)
	require.NoError(t, batch.Err())
	body, err := batch.Results[0].Message.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "127500", gjson.GetBytes(body, "tradeEconomics.commodityOption.premium.totalPremium").Raw)
}

func TestProcessOptionStyleIsCaseSensitive(t *testing.T) {
	svc := newTestService(t, classify.ModePair, nil)
	rec := `{
  "tradeType": "newTrade",
  "instrument": "option",
  "sub_instrument": "vanilla",
  "trade_id": "OPT-3",
  "counterparty": {"internal": "BANK", "external": "CLIENT"},
  "portfolio": {"internal": "P1", "external": "P2"},
  "traders": {"internal": "T1", "external": "T2"},
  "option_type": "european",
  "quantity": 5000
}`
	batch, err := svc.Process("opt.json", []byte(rec))
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.Nil(t, batch.Results[0].Message)

	var semantic *trade.SemanticValidationError
	require.ErrorAs(t, batch.Results[0].Err, &semantic)
	assert.Equal(t, "exerciseStyle", semantic.Field)
	assert.Equal(t, "european", semantic.Value)
}

func TestNewServiceRequiresComponents(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil, Options{})
	assert.Error(t, err)
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{}.normalized()
	assert.Equal(t, DefaultMessageType, o.MessageType)
	assert.Equal(t, DefaultWorkers, o.Workers)
}
