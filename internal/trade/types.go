// Package trade holds the domain types shared by every booking stage.
package trade

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Instrument is the canonical instrument family of a trade.
type Instrument string

const (
	InstrumentSwap     Instrument = "swap"
	InstrumentOption   Instrument = "option"
	InstrumentForward  Instrument = "forward"
	InstrumentFuture   Instrument = "future"
	InstrumentPhysical Instrument = "physical"
	InstrumentSwaption Instrument = "swaption"
	InstrumentFX       Instrument = "fx"
	InstrumentCash     Instrument = "cash"
)

// Instruments lists every supported instrument family.
func Instruments() []Instrument {
	return []Instrument{
		InstrumentSwap, InstrumentOption, InstrumentForward, InstrumentFuture,
		InstrumentPhysical, InstrumentSwaption, InstrumentFX, InstrumentCash,
	}
}

// ParseInstrument normalizes s and reports whether it names a known family.
func ParseInstrument(s string) (Instrument, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, inst := range Instruments() {
		if string(inst) == key {
			return inst, true
		}
	}
	return "", false
}

// SubInstrument refines an Instrument. The zero value means "none".
type SubInstrument string

const (
	SubNone                SubInstrument = ""
	SubFixedFloat          SubInstrument = "fixedFloat"
	SubFloatFloat          SubInstrument = "floatFloat"
	SubVanilla             SubInstrument = "vanilla"
	SubGasPhysical         SubInstrument = "gasPhysical"
	SubOilPhysical         SubInstrument = "oilPhysical"
	SubElectricityPhysical SubInstrument = "electricityPhysical"
	SubCoalPhysical        SubInstrument = "coalPhysical"
	SubBullionPhysical     SubInstrument = "bullionPhysical"
	SubFixedPhysical       SubInstrument = "fixedPhysical"
	SubIndexPhysical       SubInstrument = "indexPhysical"
)

var subInstruments = map[Instrument][]SubInstrument{
	InstrumentSwap: {SubFixedFloat, SubFloatFloat},
	InstrumentPhysical: {
		SubGasPhysical, SubOilPhysical, SubElectricityPhysical, SubCoalPhysical,
		SubBullionPhysical, SubFixedPhysical, SubIndexPhysical,
	},
	InstrumentOption:   {SubVanilla},
	InstrumentSwaption: {SubVanilla},
}

// SubInstruments returns the sub-instruments valid for inst.
func SubInstruments(inst Instrument) []SubInstrument {
	subs := subInstruments[inst]
	out := make([]SubInstrument, len(subs))
	copy(out, subs)
	return out
}

// ParseSubInstrument matches s against the sub-instruments of inst, ignoring
// case, underscores, hyphens and spaces ("fixed_float" == "fixedFloat").
func ParseSubInstrument(inst Instrument, s string) (SubInstrument, bool) {
	key := foldIdent(s)
	for _, sub := range subInstruments[inst] {
		if foldIdent(string(sub)) == key {
			return sub, true
		}
	}
	return "", false
}

func foldIdent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// Classification is the canonical (instrument, sub-instrument) pair for a
// record. Pattern keeps the normalized pricing pattern, if any, for
// decomposition rules.
type Classification struct {
	Instrument Instrument
	Sub        SubInstrument
	Pattern    string
}

func (c Classification) String() string {
	if c.Sub == SubNone {
		return string(c.Instrument)
	}
	return fmt.Sprintf("%s/%s", c.Instrument, c.Sub)
}

// Record is an immutable raw trade record. Numbers are kept as json.Number.
type Record struct {
	fields map[string]any
}

// ParseRecord decodes a JSON object into a Record.
func ParseRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Record{}, err
	}
	if fields == nil {
		return Record{}, fmt.Errorf("trade record is not a json object")
	}
	return Record{fields: fields}, nil
}

// NewRecord copies fields into a new Record.
func NewRecord(fields map[string]any) Record {
	return Record{fields: deepCopyMap(fields)}
}

// Get returns the top-level value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key is present at the top level.
func (r Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// String returns the value under key as trimmed text, or "" when absent.
func (r Record) String(key string) string {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// TradeID returns the record's trade_id.
func (r Record) TradeID() string { return r.String("trade_id") }

// Len returns the number of top-level keys.
func (r Record) Len() int { return len(r.fields) }

// Keys returns the top-level keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a deep copy of the record content.
func (r Record) Fields() map[string]any {
	return deepCopyMap(r.fields)
}

// With returns a shallow copy of r with overrides applied on top.
func (r Record) With(overrides map[string]any) Record {
	out := make(map[string]any, len(r.fields)+len(overrides))
	for k, v := range r.fields {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return Record{fields: out}
}

// MarshalJSON encodes the record content.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.fields)
}

// Unit is one bookable piece of a decomposed record.
type Unit struct {
	Index  int
	Record Record
	Class  Classification
}

func deepCopyMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
