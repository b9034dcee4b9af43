// Package fpml builds the FpML-like sections of a booking message from
// mapped trade fields.
package fpml

import (
	"bytes"
	"encoding/json"
	"errors"

	"tradebook/internal/trade"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Product is one instrument family's economics body.
type Product interface {
	ProductTag() string
}

// TradeEconomics wraps exactly one Product and encodes as {"<tag>": product}.
type TradeEconomics struct {
	product Product
}

func (e TradeEconomics) Product() Product { return e.product }

func (e TradeEconomics) Tag() string {
	if e.product == nil {
		return ""
	}
	return e.product.ProductTag()
}

func (e TradeEconomics) MarshalJSON() ([]byte, error) {
	if e.product == nil {
		return nil, errors.New("trade economics has no product")
	}
	body, err := encodeJSON(e.product)
	if err != nil {
		return nil, err
	}
	return encodeJSON(map[string]json.RawMessage{e.product.ProductTag(): body})
}

// encodeJSON marshals v without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Build dispatches on the instrument family.
func Build(cls trade.Classification, f Fields) (TradeEconomics, error) {
	var (
		p   Product
		err error
	)
	switch cls.Instrument {
	case trade.InstrumentSwap:
		p, err = buildSwap(cls.Sub, f)
	case trade.InstrumentOption:
		p, err = buildOption(f)
	case trade.InstrumentForward:
		p = buildForward(f)
	case trade.InstrumentFuture:
		p = buildFuture(f)
	case trade.InstrumentPhysical:
		p, err = buildPhysical(cls.Sub, f)
	case trade.InstrumentSwaption:
		p = buildSwaption(f)
	case trade.InstrumentFX:
		p = buildFX(f)
	case trade.InstrumentCash:
		p = buildCash(f)
	default:
		return TradeEconomics{}, &trade.UnsupportedInstrumentError{Value: string(cls.Instrument)}
	}
	if err != nil {
		return TradeEconomics{}, err
	}
	return TradeEconomics{product: p}, nil
}
