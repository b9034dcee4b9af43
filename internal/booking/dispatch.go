package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"tradebook/internal/logger"
	"tradebook/internal/sink"
	"tradebook/internal/trade"
)

const DefaultFilePattern = "{trade_id}-{unit}.json"

// ErrSinkSkipped marks units not delivered because the sink already failed
// earlier in the same batch.
var ErrSinkSkipped = errors.New("sink disabled after earlier failure")

type writerTarget struct {
	name   string
	w      sink.Writer
	indent bool
}

// Dispatcher delivers the messages of a batch to writers and an optional
// publisher, one unit at a time in unit order.
type Dispatcher struct {
	writers   []writerTarget
	publisher sink.Publisher
	topic     string
	pattern   string
}

type DispatchOption func(*Dispatcher)

// WithWriter adds a writer; indent selects 4-space indented output.
func WithWriter(name string, w sink.Writer, indent bool) DispatchOption {
	return func(d *Dispatcher) {
		if w != nil {
			d.writers = append(d.writers, writerTarget{name: name, w: w, indent: indent})
		}
	}
}

func WithPublisher(p sink.Publisher, topic string) DispatchOption {
	return func(d *Dispatcher) {
		d.publisher = p
		d.topic = topic
	}
}

func WithFilePattern(pattern string) DispatchOption {
	return func(d *Dispatcher) {
		if strings.TrimSpace(pattern) != "" {
			d.pattern = pattern
		}
	}
}

func NewDispatcher(opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{pattern: DefaultFilePattern}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Empty reports whether the dispatcher has no sinks at all.
func (d *Dispatcher) Empty() bool { return len(d.writers) == 0 && d.publisher == nil }

// FileName expands the file pattern for one unit.
func (d *Dispatcher) FileName(b *Batch, unit int) string {
	r := strings.NewReplacer(
		"{trade_id}", sanitize(b.TradeID),
		"{unit}", strconv.Itoa(unit),
		"{batch}", b.ID.String(),
	)
	return r.Replace(d.pattern)
}

// Dispatch records delivery failures on each unit result. A sink that fails
// is skipped for the remaining units of the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, b *Batch) {
	failed := make(map[string]bool, len(d.writers))
	publishFailed := false
	log := logger.With("batch", b.ID.String(), "trade_id", b.TradeID)

	for i := range b.Results {
		res := &b.Results[i]
		if res.Message == nil {
			continue
		}
		compact, err := res.Message.MarshalJSON()
		if err != nil {
			res.Delivery = append(res.Delivery, &trade.IOError{Op: "encode", Destination: b.TradeID, Err: err})
			continue
		}
		logger.LogMessage(b.TradeID, strconv.Itoa(res.Number()), string(compact))
		path := d.FileName(b, res.Number())

		for _, t := range d.writers {
			if failed[t.name] {
				res.Delivery = append(res.Delivery, &trade.IOError{Op: "write", Destination: t.name, Err: ErrSinkSkipped})
				continue
			}
			body := compact
			if t.indent {
				var buf bytes.Buffer
				if err := json.Indent(&buf, compact, "", "    "); err == nil {
					body = buf.Bytes()
				}
			}
			if err := t.w.Write(ctx, path, body); err != nil {
				failed[t.name] = true
				res.Delivery = append(res.Delivery, asIOError("write", t.name+":"+path, err))
				log.Error("sink write failed", "sink", t.name, "unit", res.Number(), "error", err)
				continue
			}
			log.Info("message written", "sink", t.name, "unit", res.Number(), "path", path)
		}

		if d.publisher == nil {
			continue
		}
		if publishFailed {
			res.Delivery = append(res.Delivery, &trade.IOError{Op: "publish", Destination: d.topic, Err: ErrSinkSkipped})
			continue
		}
		if err := d.publisher.Publish(ctx, d.topic, compact); err != nil {
			publishFailed = true
			res.Delivery = append(res.Delivery, asIOError("publish", d.topic, err))
			log.Error("publish failed", "topic", d.topic, "unit", res.Number(), "error", err)
			continue
		}
		log.Info("message published", "topic", d.topic, "unit", res.Number())
	}
}

func asIOError(op, dest string, err error) error {
	var ioErr *trade.IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &trade.IOError{Op: op, Destination: dest, Err: err}
}

// sanitize keeps trade ids usable as file names.
func sanitize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "trade"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, id)
}
