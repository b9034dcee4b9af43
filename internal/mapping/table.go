// Package mapping renames raw record keys into message field names.
package mapping

import (
	"sort"

	"tradebook/internal/trade"
)

// Entry renames From to To.
type Entry struct {
	From string
	To   string
}

// Table is an ordered rename table. The zero value is an empty table.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a table; a repeated From replaces the earlier target in place.
func NewTable(entries ...Entry) Table {
	t := Table{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		t.put(e)
	}
	return t
}

func (t *Table) put(e Entry) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[e.From]; ok {
		t.entries[i].To = e.To
		return
	}
	t.index[e.From] = len(t.entries)
	t.entries = append(t.entries, e)
}

func (t Table) Lookup(key string) (string, bool) {
	i, ok := t.index[key]
	if !ok {
		return "", false
	}
	return t.entries[i].To, true
}

func (t Table) Len() int { return len(t.entries) }

func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Layer returns t with over's entries on top; over wins on conflicts.
func (t Table) Layer(over Table) Table {
	out := NewTable(t.entries...)
	for _, e := range over.entries {
		out.put(e)
	}
	return out
}

// Collision records two source keys renamed onto the same target.
type Collision struct {
	Target string
	Kept   string
	Lost   string
}

// Apply renames keys of in recursively through nested maps. Lists and scalars
// are copied unchanged.
func (t Table) Apply(in map[string]any) map[string]any {
	out, _ := t.ApplyWithCollisions(in)
	return out
}

// ApplyWithCollisions is Apply that also reports target collisions. Source
// keys are visited in sorted order, so the later key wins.
func (t Table) ApplyWithCollisions(in map[string]any) (map[string]any, []Collision) {
	var collisions []Collision
	out := t.apply(in, &collisions)
	return out, collisions
}

func (t Table) apply(in map[string]any, collisions *[]Collision) map[string]any {
	out := make(map[string]any, len(in))
	origin := make(map[string]string, len(in))
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		target := k
		if to, ok := t.Lookup(k); ok {
			target = to
		}
		if prev, ok := origin[target]; ok {
			*collisions = append(*collisions, Collision{Target: target, Kept: k, Lost: prev})
		}
		origin[target] = k
		if nested, ok := in[k].(map[string]any); ok {
			out[target] = t.apply(nested, collisions)
			continue
		}
		out[target] = in[k]
	}
	return out
}

// Tables holds the global table and per-instrument overrides.
type Tables struct {
	global      Table
	instruments map[trade.Instrument]Table
}

func NewTables(global Table, instruments map[trade.Instrument]Table) *Tables {
	cp := make(map[trade.Instrument]Table, len(instruments))
	for k, v := range instruments {
		cp[k] = v
	}
	return &Tables{global: global, instruments: cp}
}

func (ts *Tables) Global() Table { return ts.global }

func (ts *Tables) Instrument(inst trade.Instrument) Table { return ts.instruments[inst] }

// Combined returns the single effective table for inst.
func (ts *Tables) Combined(inst trade.Instrument) Table {
	return ts.global.Layer(ts.instruments[inst])
}
