// Package classify resolves raw instrument identifiers to a canonical
// trade.Classification.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"tradebook/internal/trade"
)

// Mode selects which record keys drive classification.
type Mode string

const (
	// ModePricing reads a single pricing pattern such as "crack_spread_box".
	ModePricing Mode = "pricing"
	// ModePair reads separate instrument and sub_instrument keys.
	ModePair Mode = "pair"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePricing, "":
		return ModePricing, nil
	case ModePair:
		return ModePair, nil
	default:
		return "", fmt.Errorf("unknown classification mode %q", s)
	}
}

func bookable(inst trade.Instrument, sub trade.SubInstrument) trade.Classification {
	return trade.Classification{Instrument: inst, Sub: sub}
}

var pricingPatterns = map[string]trade.Classification{
	"outright":              bookable(trade.InstrumentSwap, trade.SubFixedFloat),
	"outright_strip":        bookable(trade.InstrumentSwap, trade.SubFixedFloat),
	"calender_spread":       bookable(trade.InstrumentSwap, trade.SubFixedFloat),
	"calender_spread_strip": bookable(trade.InstrumentSwap, trade.SubFixedFloat),
	"outright_box":          bookable(trade.InstrumentSwap, trade.SubFixedFloat),
	"calender_spread_flfl":  bookable(trade.InstrumentSwap, trade.SubFloatFloat),
	"crack_spread":          bookable(trade.InstrumentSwap, trade.SubFloatFloat),
	"crack_spread_strip":    bookable(trade.InstrumentSwap, trade.SubFloatFloat),
	"crack_spread_box":      bookable(trade.InstrumentSwap, trade.SubFloatFloat),

	"future":        bookable(trade.InstrumentFuture, trade.SubNone),
	"future_spread": bookable(trade.InstrumentFuture, trade.SubNone),

	"forward":        bookable(trade.InstrumentForward, trade.SubNone),
	"forward_spread": bookable(trade.InstrumentForward, trade.SubNone),
	"fx":             bookable(trade.InstrumentForward, trade.SubNone),
	"fx_spread":      bookable(trade.InstrumentForward, trade.SubNone),

	"cash": bookable(trade.InstrumentCash, trade.SubNone),

	"physical":                        bookable(trade.InstrumentPhysical, trade.SubFixedPhysical),
	"physical_cal_spread":             bookable(trade.InstrumentPhysical, trade.SubFixedPhysical),
	"physical_strip":                  bookable(trade.InstrumentPhysical, trade.SubFixedPhysical),
	"physical_cal_spread_strip":       bookable(trade.InstrumentPhysical, trade.SubFixedPhysical),
	"physical_index_spread":           bookable(trade.InstrumentPhysical, trade.SubIndexPhysical),
	"physical_index_spread_box":       bookable(trade.InstrumentPhysical, trade.SubIndexPhysical),
	"physical_index_spread_strip":     bookable(trade.InstrumentPhysical, trade.SubIndexPhysical),
	"physical_index_spread_box_strip": bookable(trade.InstrumentPhysical, trade.SubIndexPhysical),

	"option":              bookable(trade.InstrumentOption, trade.SubVanilla),
	"option_spread":       bookable(trade.InstrumentOption, trade.SubVanilla),
	"option_strip":        bookable(trade.InstrumentOption, trade.SubVanilla),
	"option_spread_strip": bookable(trade.InstrumentOption, trade.SubVanilla),
	"option_collar":       bookable(trade.InstrumentOption, trade.SubVanilla),
	"option_collar_strip": bookable(trade.InstrumentOption, trade.SubVanilla),

	"swaption":              bookable(trade.InstrumentSwaption, trade.SubVanilla),
	"swaption_spread":       bookable(trade.InstrumentSwaption, trade.SubVanilla),
	"swaption_strip":        bookable(trade.InstrumentSwaption, trade.SubVanilla),
	"swaption_spread_strip": bookable(trade.InstrumentSwaption, trade.SubVanilla),
	"swaption_collar":       bookable(trade.InstrumentSwaption, trade.SubVanilla),
	"swaption_collar_strip": bookable(trade.InstrumentSwaption, trade.SubVanilla),
}

// PricingPatterns returns every known pricing pattern, sorted.
func PricingPatterns() []string {
	out := make([]string, 0, len(pricingPatterns))
	for k := range pricingPatterns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ClassifyPricing resolves a pricing pattern.
func ClassifyPricing(pattern string) (trade.Classification, error) {
	key := normalize(pattern)
	cls, ok := pricingPatterns[key]
	if !ok {
		return trade.Classification{}, &trade.UnsupportedInstrumentError{Value: pattern}
	}
	cls.Pattern = key
	return cls, nil
}

// ClassifyPair resolves an explicit instrument / sub-instrument pair.
func ClassifyPair(instrument, sub string) (trade.Classification, error) {
	inst, ok := trade.ParseInstrument(instrument)
	if !ok {
		return trade.Classification{}, &trade.UnsupportedInstrumentError{Value: instrument}
	}
	cls := trade.Classification{Instrument: inst}
	if isAbsent(sub) {
		switch inst {
		case trade.InstrumentOption, trade.InstrumentSwaption:
			cls.Sub = trade.SubVanilla
			return cls, nil
		case trade.InstrumentSwap, trade.InstrumentPhysical:
			return trade.Classification{}, &trade.UnsupportedSubInstrumentError{Instrument: inst}
		default:
			return cls, nil
		}
	}
	resolved, ok := trade.ParseSubInstrument(inst, sub)
	if !ok {
		return trade.Classification{}, &trade.UnsupportedSubInstrumentError{Instrument: inst, Value: sub}
	}
	cls.Sub = resolved
	return cls, nil
}

func isAbsent(sub string) bool {
	switch normalize(sub) {
	case "", "none", "null", "n/a":
		return true
	}
	return false
}

// Classifier applies one Mode to whole records.
type Classifier struct {
	mode Mode
}

func New(mode Mode) *Classifier {
	if mode == "" {
		mode = ModePricing
	}
	return &Classifier{mode: mode}
}

func (c *Classifier) Mode() Mode { return c.mode }

// Classify reads the identifiers the mode calls for from rec.
func (c *Classifier) Classify(rec trade.Record) (trade.Classification, error) {
	if c.mode == ModePair {
		cls, err := ClassifyPair(rec.String("instrument"), rec.String("sub_instrument"))
		if err != nil {
			return trade.Classification{}, err
		}
		cls.Pattern = normalize(rec.String("pricing_instrument"))
		return cls, nil
	}
	pattern := rec.String("pricing_instrument")
	if pattern == "" {
		pattern = rec.String("instrument")
	}
	return ClassifyPricing(pattern)
}
