package envelope

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 9, 30, 0, 123456000, time.FixedZone("CET", 3600))
}

func testHeader() Header {
	return NewBuilder(WithClock(fixedClock)).BuildHeader("newTrade", "HGRAPH", "BOOKING")
}

func testSections(t *testing.T) []Section {
	t.Helper()
	var out []Section
	for _, kv := range []struct {
		key string
		v   any
	}{
		{"tradeHeader", map[string]any{"tradeDate": "2024-01-15"}},
		{"tradeEconomics", map[string]any{"commoditySwap": map[string]any{"buySell": "Buy"}}},
		{"tradeFooter", map[string]any{"placeholderField1": ""}},
	} {
		s, err := NewSection(kv.key, kv.v)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func TestBuildHeader(t *testing.T) {
	h := testHeader()
	assert.Equal(t, "newTrade", h.MessageType)
	assert.Equal(t, "HGRAPH", h.SenderCompID)
	assert.Equal(t, "BOOKING", h.TargetCompID)
	assert.Equal(t, "2024-01-15T08:30:00.123456Z", h.SendingTime)
	assert.Equal(t, "1.0", h.MessageVersion)
}

func TestBuildFooterIsNull(t *testing.T) {
	raw, err := json.Marshal(BuildFooter())
	require.NoError(t, err)
	assert.Equal(t, `{"checksum":null}`, string(raw))
}

func TestChecksumDeterministic(t *testing.T) {
	a, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)
	b, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)

	assert.Regexp(t, hexDigest, a.Checksum())
	assert.Equal(t, a.Checksum(), b.Checksum())
}

func TestChecksumSensitiveToContent(t *testing.T) {
	base, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)

	changed := testSections(t)
	changed[1], err = NewSection("tradeEconomics", map[string]any{"commoditySwap": map[string]any{"buySell": "Sell"}})
	require.NoError(t, err)
	other, err := Assemble(testHeader(), changed)
	require.NoError(t, err)
	assert.NotEqual(t, base.Checksum(), other.Checksum())

	h := testHeader()
	h.TargetCompID = "OTHER"
	other, err = Assemble(h, testSections(t))
	require.NoError(t, err)
	assert.NotEqual(t, base.Checksum(), other.Checksum())
}

func TestChecksumIgnoresWhitespace(t *testing.T) {
	spaced := testSections(t)
	spaced[0] = Section{Key: "tradeHeader", Raw: json.RawMessage("{ \"tradeDate\" :  \"2024-01-15\" }")}
	a, err := Assemble(testHeader(), spaced)
	require.NoError(t, err)
	b, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)
	assert.Equal(t, b.Checksum(), a.Checksum())
}

func TestMessageLayoutAndRoundTrip(t *testing.T) {
	msg, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var keys []string
	gjson.ParseBytes(raw).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"messageHeader", "tradeHeader", "tradeEconomics", "tradeFooter", "messageFooter"}, keys)
	assert.Equal(t, msg.Checksum(), gjson.GetBytes(raw, "messageFooter.checksum").String())

	parsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, msg.Checksum(), parsed.Checksum())
	assert.NoError(t, parsed.Verify())
}

func TestVerifyDetectsTampering(t *testing.T) {
	msg, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	tampered := bytes.Replace(raw, []byte(`"Buy"`), []byte(`"Sell"`), 1)
	parsed, err := Parse(tampered)
	require.NoError(t, err)
	assert.ErrorIs(t, parsed.Verify(), ErrChecksumMismatch)
}

func TestVerifyDetectsHeaderTampering(t *testing.T) {
	msg, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)
	raw, err := msg.MarshalJSON()
	require.NoError(t, err)

	cases := map[string][]byte{
		"added field":   bytes.Replace(raw, []byte(`"messageVersion":"1.0"`), []byte(`"messageVersion":"1.0","priority":"high"`), 1),
		"changed value": bytes.Replace(raw, []byte(`"senderCompID":"HGRAPH"`), []byte(`"senderCompID":"OTHER"`), 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotEqual(t, raw, doc)
			parsed, err := Parse(doc)
			require.NoError(t, err)
			assert.ErrorIs(t, parsed.Verify(), ErrChecksumMismatch)
		})
	}
}

func TestParsedMessageReencodesHeaderVerbatim(t *testing.T) {
	msg, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)
	raw, err := msg.MarshalJSON()
	require.NoError(t, err)

	var indented bytes.Buffer
	require.NoError(t, json.Indent(&indented, raw, "", "    "))
	parsed, err := Parse(indented.Bytes())
	require.NoError(t, err)
	require.NoError(t, parsed.Verify())

	again, err := parsed.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(again))
}

func TestFilterAllowedKeepsDocumentOrder(t *testing.T) {
	doc := `{"metadata":{"type":"x"},"tradeFooter":{"a":1},"tradeHeader":{ "b" : 2 },"extra":true}`
	sections, err := FilterAllowed([]byte(doc))
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "tradeFooter", sections[0].Key)
	assert.Equal(t, "tradeHeader", sections[1].Key)
	assert.Equal(t, `{"b":2}`, string(sections[1].Raw))
}

func TestFilterAllowedRejects(t *testing.T) {
	_, err := FilterAllowed([]byte(`{"tradeHeader":{},"tradeHeader":{}}`))
	assert.ErrorIs(t, err, ErrDuplicateSection)

	_, err = FilterAllowed([]byte(`[1]`))
	assert.Error(t, err)
}

func TestAssembleRejectsUnknownSection(t *testing.T) {
	_, err := Assemble(testHeader(), []Section{{Key: "metadata", Raw: json.RawMessage(`{}`)}})
	assert.Error(t, err)

	_, err = Assemble(testHeader(), []Section{{Key: "tradeHeader"}})
	assert.Error(t, err)
}

func TestSectionAccessorCopies(t *testing.T) {
	msg, err := Assemble(testHeader(), testSections(t))
	require.NoError(t, err)
	raw, ok := msg.Section("tradeHeader")
	require.True(t, ok)
	raw[0] = 'X'
	assert.NoError(t, msg.Verify())
}

func TestNoHTMLEscaping(t *testing.T) {
	s, err := NewSection("tradeHeader", map[string]string{"note": "a<b&c"})
	require.NoError(t, err)
	assert.Equal(t, `{"note":"a<b&c"}`, string(s.Raw))
}
