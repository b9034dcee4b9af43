// Package booking runs a raw trade record through validation,
// classification, decomposition and per-unit message assembly, then hands
// the sealed messages to the configured sinks.
package booking

import (
	"context"
	"fmt"
	"strings"

	"tradebook/internal/classify"
	"tradebook/internal/decompose"
	"tradebook/internal/envelope"
	"tradebook/internal/fpml"
	"tradebook/internal/logger"
	"tradebook/internal/mapping"
	"tradebook/internal/trade"
	"tradebook/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMessageType = "newTrade"
	DefaultSender      = "DefaultSender"
	DefaultTarget      = "DefaultTarget"
	DefaultWorkers     = 4
)

// Options are the fallbacks used when a record does not name its own
// message type, sender or target.
type Options struct {
	MessageType string
	Sender      string
	Target      string
	Workers     int
}

func (o Options) normalized() Options {
	if strings.TrimSpace(o.MessageType) == "" {
		o.MessageType = DefaultMessageType
	}
	if strings.TrimSpace(o.Sender) == "" {
		o.Sender = DefaultSender
	}
	if strings.TrimSpace(o.Target) == "" {
		o.Target = DefaultTarget
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// Service books trade records into messages.
type Service struct {
	validator  *validate.Validator
	classifier *classify.Classifier
	decomposer *decompose.Decomposer
	tables     *mapping.Tables
	envelope   *envelope.Builder
	dispatcher *Dispatcher
	opts       Options
}

// NewService wires the pipeline components. A nil dispatcher means messages
// are built but never delivered.
func NewService(
	v *validate.Validator,
	c *classify.Classifier,
	d *decompose.Decomposer,
	tables *mapping.Tables,
	eb *envelope.Builder,
	dispatcher *Dispatcher,
	opts Options,
) (*Service, error) {
	if v == nil || c == nil || d == nil || tables == nil || eb == nil {
		return nil, fmt.Errorf("booking: validator, classifier, decomposer, tables and envelope builder are required")
	}
	return &Service{
		validator:  v,
		classifier: c,
		decomposer: d,
		tables:     tables,
		envelope:   eb,
		dispatcher: dispatcher,
		opts:       opts.normalized(),
	}, nil
}

// Book processes content and delivers every built message.
func (s *Service) Book(ctx context.Context, source string, content []byte) (*Batch, error) {
	batch, err := s.Process(source, content)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, batch)
	}
	return batch, nil
}

// Process validates and decomposes one record, then builds every unit in
// parallel. Record-level failures are returned; unit failures are kept on the
// batch and never stop sibling units.
func (s *Service) Process(source string, content []byte) (*Batch, error) {
	rec, err := s.validator.Validate(content)
	if err != nil {
		logger.With("source", source).Warn("record rejected", "error", err)
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	cls, err := s.classifier.Classify(rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	units, err := s.decomposer.Decompose(rec, cls)
	if err != nil {
		return nil, fmt.Errorf("%s: decompose: %w", source, err)
	}

	batch := &Batch{
		ID:      uuid.New(),
		Source:  source,
		TradeID: rec.TradeID(),
		Class:   cls,
		Results: make([]UnitResult, len(units)),
	}
	log := logger.With("batch", batch.ID.String(), "trade_id", batch.TradeID)
	log.Info("record decomposed", "class", cls.String(), "units", len(units))

	var group errgroup.Group
	group.SetLimit(s.opts.Workers)
	for i, u := range units {
		group.Go(func() error {
			res := UnitResult{Unit: u}
			msg, err := s.BuildUnit(u)
			if err != nil {
				res.Err = &UnitError{TradeID: batch.TradeID, Unit: u.Index + 1, Err: err}
				log.Warn("unit build failed", "unit", u.Index+1, "error", err)
			} else {
				res.Message = msg
				log.Debug("unit built", "unit", u.Index+1, "checksum", msg.Checksum())
			}
			batch.Results[i] = res
			return nil
		})
	}
	_ = group.Wait()
	return batch, nil
}

// BuildUnit maps, builds and seals a single unit.
func (s *Service) BuildUnit(u trade.Unit) (*envelope.Message, error) {
	table := s.tables.Combined(u.Class.Instrument)
	mapped, collisions := table.ApplyWithCollisions(u.Record.Fields())
	for _, c := range collisions {
		logger.With("trade_id", u.Record.TradeID(), "unit", u.Index+1).
			Debug("mapping collision", "target", c.Target, "kept", c.Kept, "lost", c.Lost)
	}
	fields := fpml.Fields(mapped)

	economics, err := fpml.Build(u.Class, fields)
	if err != nil {
		return nil, fmt.Errorf("build %s economics: %w", u.Class, err)
	}
	header := s.envelope.BuildHeader(
		recordOr(u.Record, "tradeType", s.opts.MessageType),
		recordOr(u.Record, "sender", s.opts.Sender),
		recordOr(u.Record, "target", s.opts.Target),
	)

	parts := []struct {
		key string
		v   any
	}{
		{"tradeHeader", fpml.BuildTradeHeader(fields)},
		{"tradeEconomics", economics},
		{"tradeFooter", fpml.BuildTradeFooter(fields)},
	}
	sections := make([]envelope.Section, 0, len(parts))
	for _, p := range parts {
		sec, err := envelope.NewSection(p.key, p.v)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return envelope.Assemble(header, sections)
}

func recordOr(rec trade.Record, key, def string) string {
	if v := strings.TrimSpace(rec.String(key)); v != "" {
		return v
	}
	return def
}
