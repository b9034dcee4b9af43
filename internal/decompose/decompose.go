// Package decompose splits one classified record into bookable units.
package decompose

import (
	"fmt"
	"strings"

	"tradebook/internal/trade"
)

// calendarSpreadPatterns split into two fixed/float swaps.
var calendarSpreadPatterns = map[string]bool{
	"calender_spread":       true,
	"calender_spread_strip": true,
}

type Decomposer struct {
	splitter PeriodSplitter
}

type Option func(*Decomposer)

// WithSplitter replaces the default tenor splitter.
func WithSplitter(s PeriodSplitter) Option {
	return func(d *Decomposer) {
		if s != nil {
			d.splitter = s
		}
	}
}

func New(opts ...Option) *Decomposer {
	d := &Decomposer{splitter: NewTenorSplitter(nil)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decompose returns the ordered, non-empty unit list for rec.
func (d *Decomposer) Decompose(rec trade.Record, cls trade.Classification) ([]trade.Unit, error) {
	if !isCalendarSpread(cls) {
		return []trade.Unit{{Index: 0, Record: rec, Class: cls}}, nil
	}
	periods, err := d.splitter.Split(rec)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", rec.TradeID(), err)
	}
	if len(periods) != 2 {
		return nil, fmt.Errorf("split %s: expected 2 periods, got %d", rec.TradeID(), len(periods))
	}
	units := make([]trade.Unit, 0, len(periods))
	for i, p := range periods {
		overrides := dateOverrides(rec, effectiveDate, p.Effective)
		for k, v := range dateOverrides(rec, terminationDate, p.Termination) {
			overrides[k] = v
		}
		units = append(units, trade.Unit{
			Index:  i,
			Record: rec.With(overrides),
			Class:  cls,
		})
	}
	return units, nil
}

// dateKey names the raw and FpML spellings of one economics date.
type dateKey struct {
	raw  string
	fpml string
}

var (
	effectiveDate   = dateKey{raw: "effective_date", fpml: "effectiveDate"}
	terminationDate = dateKey{raw: "termination_date", fpml: "terminationDate"}
)

// recordDate reads k as "effective_date", "effectiveDate.unadjustedDate",
// {"effectiveDate":{"unadjustedDate":...}} or a plain "effectiveDate".
func recordDate(rec trade.Record, k dateKey) string {
	if s := rec.String(k.raw); s != "" {
		return s
	}
	if s := rec.String(k.fpml + ".unadjustedDate"); s != "" {
		return s
	}
	v, _ := rec.Get(k.fpml)
	switch t := v.(type) {
	case map[string]any:
		if s, ok := t["unadjustedDate"].(string); ok {
			return strings.TrimSpace(s)
		}
	case string:
		return strings.TrimSpace(t)
	}
	return ""
}

// dateOverrides sets date on every spelling the record already carries, so
// no stale copy reaches the builders. The raw key is used when the record
// has no other spelling.
func dateOverrides(rec trade.Record, k dateKey, date string) map[string]any {
	out := make(map[string]any, 2)
	if rec.Has(k.fpml + ".unadjustedDate") {
		out[k.fpml+".unadjustedDate"] = date
	}
	v, _ := rec.Get(k.fpml)
	switch t := v.(type) {
	case map[string]any:
		nested := make(map[string]any, len(t)+1)
		for key, val := range t {
			nested[key] = val
		}
		nested["unadjustedDate"] = date
		out[k.fpml] = nested
	case string:
		out[k.fpml] = date
	}
	if rec.Has(k.raw) || len(out) == 0 {
		out[k.raw] = date
	}
	return out
}

func isCalendarSpread(cls trade.Classification) bool {
	return cls.Instrument == trade.InstrumentSwap &&
		cls.Sub == trade.SubFixedFloat &&
		calendarSpreadPatterns[cls.Pattern]
}
