// Package validate runs pre-flight checks on raw trade records before they
// enter the booking pipeline.
package validate

import (
	"regexp"
	"strings"
	"time"

	"tradebook/internal/classify"
	"tradebook/internal/trade"

	"github.com/tidwall/gjson"
)

// DefaultRequiredKeys lists the keys every record must carry. "a|b" accepts
// either key; dotted entries address nested objects.
func DefaultRequiredKeys() []string {
	return []string{
		"tradeType",
		"instrument|pricing_instrument",
		"sub_instrument|pricing_instrument",
		"trade_id",
		"counterparty",
		"counterparty.internal",
		"counterparty.external",
		"portfolio",
		"portfolio.internal",
		"portfolio.external",
		"traders",
		"traders.internal",
		"traders.external",
	}
}

// DefaultDateFields are checked for YYYY-MM-DD when present.
func DefaultDateFields() []string {
	return []string{
		"trade_date", "effective_date", "termination_date", "expiry_date",
		"expiration_date", "settlement_date", "premium_payment_date", "value_date",
	}
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Validator struct {
	required   []string
	dateFields []string
	classifier *classify.Classifier
}

type Option func(*Validator)

func WithRequiredKeys(keys []string) Option {
	return func(v *Validator) { v.required = append([]string(nil), keys...) }
}

func WithDateFields(fields []string) Option {
	return func(v *Validator) { v.dateFields = append([]string(nil), fields...) }
}

func New(classifier *classify.Classifier, opts ...Option) *Validator {
	v := &Validator{
		required:   DefaultRequiredKeys(),
		dateFields: DefaultDateFields(),
		classifier: classifier,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.classifier == nil {
		v.classifier = classify.New(classify.ModePricing)
	}
	return v
}

// Validate checks content and returns the parsed record.
func (v *Validator) Validate(content []byte) (trade.Record, error) {
	if err := v.checkStructure(content); err != nil {
		return trade.Record{}, err
	}
	rec, err := trade.ParseRecord(content)
	if err != nil {
		return trade.Record{}, &trade.StructuralValidationError{Cause: err}
	}
	if _, err := v.classifier.Classify(rec); err != nil {
		return trade.Record{}, err
	}
	if err := v.checkDates(rec); err != nil {
		return trade.Record{}, err
	}
	return rec, nil
}

func (v *Validator) checkStructure(content []byte) error {
	if !gjson.ValidBytes(content) {
		return &trade.StructuralValidationError{Cause: errInvalidJSON}
	}
	root := gjson.ParseBytes(content)
	if !root.IsObject() {
		return &trade.StructuralValidationError{Cause: errNotObject}
	}
	var missing []string
	for _, req := range v.required {
		if underMissing(req, missing) {
			continue
		}
		if !anyExists(root, req) {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &trade.StructuralValidationError{Missing: missing}
	}
	return nil
}

func anyExists(root gjson.Result, req string) bool {
	for _, alt := range strings.Split(req, "|") {
		if root.Get(strings.TrimSpace(alt)).Exists() {
			return true
		}
	}
	return false
}

// underMissing reports whether a parent of path is already reported missing.
func underMissing(path string, missing []string) bool {
	for _, m := range missing {
		if strings.HasPrefix(path, m+".") {
			return true
		}
	}
	return false
}

func (v *Validator) checkDates(rec trade.Record) error {
	for _, field := range v.dateFields {
		raw, ok := rec.Get(field)
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			return &trade.SemanticValidationError{Field: field, Value: rec.String(field), Reason: "expected YYYY-MM-DD string"}
		}
		if !datePattern.MatchString(s) {
			return &trade.SemanticValidationError{Field: field, Value: s, Reason: "expected YYYY-MM-DD"}
		}
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return &trade.SemanticValidationError{Field: field, Value: s, Reason: "not a calendar date"}
		}
	}
	return nil
}
