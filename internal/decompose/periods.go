package decompose

import (
	"time"

	"tradebook/internal/logger"
	"tradebook/internal/trade"
)

// Period is an effective/termination date pair (YYYY-MM-DD).
type Period struct {
	Effective   string `mapstructure:"effective" json:"effective"`
	Termination string `mapstructure:"termination" json:"termination"`
}

// PeriodSplitter derives the two legs of a calendar spread.
type PeriodSplitter interface {
	Split(rec trade.Record) ([]Period, error)
}

// PlaceholderPeriods are used when a record carries no usable tenor.
func PlaceholderPeriods() []Period {
	return []Period{
		{Effective: "2024-01-01", Termination: "2024-02-01"},
		{Effective: "2024-02-01", Termination: "2024-03-01"},
	}
}

// TenorSplitter cuts the record's effective/termination tenor at the first
// of the month nearest the midpoint.
type TenorSplitter struct {
	fallback []Period
}

func NewTenorSplitter(fallback []Period) *TenorSplitter {
	if len(fallback) == 0 {
		fallback = PlaceholderPeriods()
	}
	return &TenorSplitter{fallback: append([]Period(nil), fallback...)}
}

func (s *TenorSplitter) Split(rec trade.Record) ([]Period, error) {
	start, errStart := time.Parse(time.DateOnly, recordDate(rec, effectiveDate))
	end, errEnd := time.Parse(time.DateOnly, recordDate(rec, terminationDate))
	if errStart != nil || errEnd != nil || !end.After(start.AddDate(0, 0, 1)) {
		logger.With("trade_id", rec.TradeID()).Warn("calendar spread without usable tenor, using placeholder periods")
		return append([]Period(nil), s.fallback...), nil
	}
	cut := splitPoint(start, end)
	return []Period{
		{Effective: start.Format(time.DateOnly), Termination: cut.Format(time.DateOnly)},
		{Effective: cut.Format(time.DateOnly), Termination: end.Format(time.DateOnly)},
	}, nil
}

func splitPoint(start, end time.Time) time.Time {
	mid := start.Add(end.Sub(start) / 2)
	first := time.Date(mid.Year(), mid.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	cut := first
	if mid.Sub(first) > next.Sub(mid) {
		cut = next
	}
	if !cut.After(start) {
		cut = next
	}
	if !cut.Before(end) {
		// tenor shorter than a month boundary allows
		return time.Date(mid.Year(), mid.Month(), mid.Day(), 0, 0, 0, 0, time.UTC)
	}
	return cut
}
