// Package envelope wraps trade sections in a message header and footer and
// seals them with a SHA-256 checksum.
package envelope

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

const (
	MessageVersion    = "1.0"
	sendingTimeLayout = "2006-01-02T15:04:05.000000Z"
)

// AllowedSections are the only top-level trade sections a message carries.
var AllowedSections = []string{"tradeHeader", "tradeEconomics", "tradeFooter"}

var (
	ErrChecksumMismatch = errors.New("message checksum mismatch")
	ErrDuplicateSection = errors.New("duplicate message section")
)

func allowed(key string) bool {
	for _, k := range AllowedSections {
		if k == key {
			return true
		}
	}
	return false
}

type Header struct {
	MessageType    string `json:"messageType"`
	SenderCompID   string `json:"senderCompID"`
	TargetCompID   string `json:"targetCompID"`
	SendingTime    string `json:"sendingTime"`
	MessageVersion string `json:"messageVersion"`
}

// Footer carries the checksum; it is null until a message is assembled.
type Footer struct {
	Checksum *string `json:"checksum"`
}

func BuildFooter() Footer { return Footer{} }

// Clock returns the current time; tests inject a fixed one.
type Clock func() time.Time

type Builder struct {
	now Clock
}

type Option func(*Builder)

func WithClock(c Clock) Option {
	return func(b *Builder) {
		if c != nil {
			b.now = c
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) BuildHeader(messageType, sender, target string) Header {
	return Header{
		MessageType:    messageType,
		SenderCompID:   sender,
		TargetCompID:   target,
		SendingTime:    b.now().UTC().Format(sendingTimeLayout),
		MessageVersion: MessageVersion,
	}
}

// Section is one compacted top-level trade section.
type Section struct {
	Key string
	Raw json.RawMessage
}

// NewSection encodes v as a section body.
func NewSection(key string, v any) (Section, error) {
	raw, err := marshalCanonical(v)
	if err != nil {
		return Section{}, fmt.Errorf("encode section %s: %w", key, err)
	}
	return Section{Key: key, Raw: raw}, nil
}

// FilterAllowed keeps only allowed top-level keys of raw, in document order.
func FilterAllowed(raw []byte) ([]Section, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("sections document is not valid json")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, errors.New("sections document must be a json object")
	}
	var (
		out  []Section
		seen = make(map[string]bool)
		err  error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if !allowed(k) {
			return true
		}
		if seen[k] {
			err = fmt.Errorf("%w: %s", ErrDuplicateSection, k)
			return false
		}
		seen[k] = true
		var buf bytes.Buffer
		if cerr := json.Compact(&buf, []byte(value.Raw)); cerr != nil {
			err = cerr
			return false
		}
		out = append(out, Section{Key: k, Raw: buf.Bytes()})
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Message is an assembled, sealed trade message. It is immutable.
// headerRaw is the compact header exactly as sealed or received; the
// checksum covers it rather than the decoded Header.
type Message struct {
	header    Header
	headerRaw []byte
	sections  []Section
	checksum  string
}

// Assemble seals header and sections. Section order is preserved.
func Assemble(h Header, sections []Section) (*Message, error) {
	seen := make(map[string]bool, len(sections))
	cp := make([]Section, 0, len(sections))
	for _, s := range sections {
		if !allowed(s.Key) {
			return nil, fmt.Errorf("section %q is not allowed in a message", s.Key)
		}
		if seen[s.Key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSection, s.Key)
		}
		if len(s.Raw) == 0 {
			return nil, fmt.Errorf("section %s is empty", s.Key)
		}
		seen[s.Key] = true
		var buf bytes.Buffer
		if err := json.Compact(&buf, s.Raw); err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Key, err)
		}
		cp = append(cp, Section{Key: s.Key, Raw: buf.Bytes()})
	}
	headerRaw, err := marshalCanonical(h)
	if err != nil {
		return nil, err
	}
	return &Message{header: h, headerRaw: headerRaw, sections: cp, checksum: checksumRaw(headerRaw, cp)}, nil
}

func (m *Message) Header() Header { return m.header }

func (m *Message) Checksum() string { return m.checksum }

func (m *Message) Section(key string) (json.RawMessage, bool) {
	for _, s := range m.sections {
		if s.Key == key {
			out := make(json.RawMessage, len(s.Raw))
			copy(out, s.Raw)
			return out, true
		}
	}
	return nil, false
}

// Verify recomputes the checksum over the message content, header included
// byte for byte.
func (m *Message) Verify() error {
	sum := checksumRaw(m.headerRaw, m.sections)
	if sum != m.checksum {
		return fmt.Errorf("%w: have %s, computed %s", ErrChecksumMismatch, m.checksum, sum)
	}
	return nil
}

// MarshalJSON writes messageHeader, the sections, then messageFooter.
func (m *Message) MarshalJSON() ([]byte, error) {
	sum := m.checksum
	footer, err := marshalCanonical(&Footer{Checksum: &sum})
	if err != nil {
		return nil, err
	}
	return encodeObject(m.headerRaw, m.sections, footer), nil
}

// Parse reads a serialized message without recomputing its checksum; call
// Verify to check integrity.
func Parse(data []byte) (*Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("message is not valid json")
	}
	headerRaw := gjson.GetBytes(data, "messageHeader")
	if !headerRaw.IsObject() {
		return nil, errors.New("message has no messageHeader")
	}
	var h Header
	if err := json.Unmarshal([]byte(headerRaw.Raw), &h); err != nil {
		return nil, fmt.Errorf("decode messageHeader: %w", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(headerRaw.Raw)); err != nil {
		return nil, fmt.Errorf("decode messageHeader: %w", err)
	}
	sections, err := FilterAllowed(data)
	if err != nil {
		return nil, err
	}
	sum := gjson.GetBytes(data, "messageFooter.checksum")
	if sum.Type != gjson.String {
		return nil, errors.New("message has no checksum")
	}
	return &Message{header: h, headerRaw: compact.Bytes(), sections: sections, checksum: sum.String()}, nil
}

// checksumRaw is the hex SHA-256 of the compact JSON {messageHeader, sections...}.
func checksumRaw(header []byte, sections []Section) string {
	sum := sha256.Sum256(encodeObject(header, sections, nil))
	return hex.EncodeToString(sum[:])
}

// encodeObject joins already-compact parts; section keys come from
// AllowedSections and need no escaping.
func encodeObject(header []byte, sections []Section, footer []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"messageHeader":`)
	buf.Write(header)
	for _, s := range sections {
		buf.WriteString(`,"`)
		buf.WriteString(s.Key)
		buf.WriteString(`":`)
		buf.Write(s.Raw)
	}
	if footer != nil {
		buf.WriteString(`,"messageFooter":`)
		buf.Write(footer)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// marshalCanonical encodes compactly without HTML escaping.
func marshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
