package booking

import (
	"errors"
	"fmt"

	"tradebook/internal/envelope"
	"tradebook/internal/trade"

	"github.com/google/uuid"
)

// UnitResult holds the outcome of one bookable unit: a sealed message or the
// error that stopped it, plus any sink delivery failures.
type UnitResult struct {
	Unit     trade.Unit
	Message  *envelope.Message
	Err      error
	Delivery []error
}

// Number is the 1-based position of the unit within its record.
func (r UnitResult) Number() int { return r.Unit.Index + 1 }

func (r UnitResult) OK() bool { return r.Err == nil && len(r.Delivery) == 0 }

// UnitError identifies the trade and unit a build failure belongs to.
type UnitError struct {
	TradeID string
	Unit    int
	Err     error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("trade %s unit %d: %v", e.TradeID, e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Batch is every unit produced from one input record, in decomposition order.
type Batch struct {
	ID      uuid.UUID
	Source  string
	TradeID string
	Class   trade.Classification
	Results []UnitResult
}

// Messages returns the assembled messages in unit order, skipping failures.
func (b *Batch) Messages() []*envelope.Message {
	out := make([]*envelope.Message, 0, len(b.Results))
	for _, r := range b.Results {
		if r.Message != nil {
			out = append(out, r.Message)
		}
	}
	return out
}

// Err joins every build and delivery error of the batch.
func (b *Batch) Err() error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
		errs = append(errs, r.Delivery...)
	}
	return errors.Join(errs...)
}
