package decompose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/trade"
)

func spreadClass() trade.Classification {
	return trade.Classification{Instrument: trade.InstrumentSwap, Sub: trade.SubFixedFloat, Pattern: "calender_spread"}
}

func TestDecomposeDefaultIsSingleUnit(t *testing.T) {
	rec := trade.NewRecord(map[string]any{"trade_id": "F-1", "qty": 5})
	cls := trade.Classification{Instrument: trade.InstrumentFuture, Pattern: "future"}

	units, err := New().Decompose(rec, cls)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, rec.Fields(), units[0].Record.Fields())
	assert.Equal(t, cls, units[0].Class)
}

func TestDecomposeOutrightIsNotSplit(t *testing.T) {
	cls := trade.Classification{Instrument: trade.InstrumentSwap, Sub: trade.SubFixedFloat, Pattern: "outright"}
	units, err := New().Decompose(trade.NewRecord(map[string]any{"trade_id": "S"}), cls)
	require.NoError(t, err)
	assert.Len(t, units, 1)
}

func TestDecomposeCalendarSpreadPlaceholders(t *testing.T) {
	rec := trade.NewRecord(map[string]any{
		"trade_id": "CS-1",
		"buy_sell": "Buy",
		"quantity": 10000,
	})

	units, err := New().Decompose(rec, spreadClass())
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "2024-01-01", units[0].Record.String("effective_date"))
	assert.Equal(t, "2024-02-01", units[0].Record.String("termination_date"))
	assert.Equal(t, "2024-02-01", units[1].Record.String("effective_date"))
	assert.Equal(t, "2024-03-01", units[1].Record.String("termination_date"))

	for i, u := range units {
		assert.Equal(t, i, u.Index)
		for _, key := range rec.Keys() {
			want, _ := rec.Get(key)
			got, _ := u.Record.Get(key)
			assert.Equal(t, want, got, "unit %d key %s", i, key)
		}
	}
	assert.False(t, rec.Has("effective_date"), "source record is not mutated")
}

func TestDecomposeCalendarSpreadFromTenor(t *testing.T) {
	rec := trade.NewRecord(map[string]any{
		"trade_id":         "CS-2",
		"effective_date":   "2024-01-01",
		"termination_date": "2024-12-31",
	})

	units, err := New().Decompose(rec, spreadClass())
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "2024-01-01", units[0].Record.String("effective_date"))
	assert.Equal(t, "2024-07-01", units[0].Record.String("termination_date"))
	assert.Equal(t, "2024-07-01", units[1].Record.String("effective_date"))
	assert.Equal(t, "2024-12-31", units[1].Record.String("termination_date"))
}

func TestSplitPoint(t *testing.T) {
	cases := []struct {
		start, end, want string
	}{
		{"2024-01-01", "2024-03-01", "2024-02-01"},
		{"2024-03-15", "2024-06-15", "2024-05-01"},
		{"2024-01-10", "2024-01-20", "2024-01-15"},
	}
	for _, tc := range cases {
		periods, err := NewTenorSplitter(nil).Split(trade.NewRecord(map[string]any{
			"effective_date":   tc.start,
			"termination_date": tc.end,
		}))
		require.NoError(t, err)
		require.Len(t, periods, 2)
		assert.Equal(t, tc.want, periods[0].Termination, "%s..%s", tc.start, tc.end)
		assert.Equal(t, tc.want, periods[1].Effective)
	}
}

type fixedSplitter struct {
	periods []Period
	err     error
}

func (f fixedSplitter) Split(trade.Record) ([]Period, error) { return f.periods, f.err }

func TestDecomposeCustomSplitter(t *testing.T) {
	d := New(WithSplitter(fixedSplitter{periods: []Period{
		{Effective: "2025-01-01", Termination: "2025-06-30"},
		{Effective: "2025-07-01", Termination: "2025-12-31"},
	}}))
	units, err := d.Decompose(trade.NewRecord(nil), spreadClass())
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", units[1].Record.String("effective_date"))

	_, err = New(WithSplitter(fixedSplitter{err: errors.New("calendar unavailable")})).Decompose(trade.NewRecord(nil), spreadClass())
	assert.Error(t, err)

	_, err = New(WithSplitter(fixedSplitter{periods: PlaceholderPeriods()[:1]})).Decompose(trade.NewRecord(nil), spreadClass())
	assert.Error(t, err)
}

func TestDecomposeCalendarSpreadFpMLDateKeys(t *testing.T) {
	cases := map[string]map[string]any{
		"dotted": {
			"effectiveDate.unadjustedDate":   "2024-01-01",
			"terminationDate.unadjustedDate": "2024-12-31",
		},
		"nested": {
			"effectiveDate":   map[string]any{"unadjustedDate": "2024-01-01", "businessDayConvention": "FOLLOWING"},
			"terminationDate": map[string]any{"unadjustedDate": "2024-12-31"},
		},
		"plain": {
			"effectiveDate":   "2024-01-01",
			"terminationDate": "2024-12-31",
		},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			fields["trade_id"] = "CS-" + name
			units, err := New().Decompose(trade.NewRecord(fields), spreadClass())
			require.NoError(t, err)
			require.Len(t, units, 2)

			want := [][2]string{{"2024-01-01", "2024-07-01"}, {"2024-07-01", "2024-12-31"}}
			for i, u := range units {
				assert.Equal(t, want[i][0], recordDate(u.Record, effectiveDate), "unit %d", i)
				assert.Equal(t, want[i][1], recordDate(u.Record, terminationDate), "unit %d", i)
				assert.False(t, u.Record.Has("effective_date"), "no second spelling is added")
			}
		})
	}
}

func TestDecomposeNestedDateKeepsConvention(t *testing.T) {
	rec := trade.NewRecord(map[string]any{
		"trade_id":        "CS-9",
		"effectiveDate":   map[string]any{"unadjustedDate": "2024-01-01", "businessDayConvention": "FOLLOWING"},
		"terminationDate": map[string]any{"unadjustedDate": "2024-12-31"},
	})
	units, err := New().Decompose(rec, spreadClass())
	require.NoError(t, err)

	got, _ := units[1].Record.Get("effectiveDate")
	assert.Equal(t, map[string]any{"unadjustedDate": "2024-07-01", "businessDayConvention": "FOLLOWING"}, got)
	orig, _ := rec.Get("effectiveDate")
	assert.Equal(t, "2024-01-01", orig.(map[string]any)["unadjustedDate"], "source record is not mutated")
}
