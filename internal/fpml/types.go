package fpml

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Number is a decimal that encodes as a bare JSON number.
type Number struct {
	decimal.Decimal
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := decimal.NewFromString(raw.String())
	if err != nil {
		return err
	}
	n.Decimal = d
	return nil
}

type Reference struct {
	Href string `json:"href"`
}

func ref(href string) Reference { return Reference{Href: href} }

func optionalRef(href string) *Reference {
	if href == "" {
		return nil
	}
	return &Reference{Href: href}
}

type NotionalQuantity struct {
	Quantity Number `json:"quantity"`
	Unit     string `json:"unit"`
}

func buildNotionalQuantity(f Fields) NotionalQuantity {
	return NotionalQuantity{
		Quantity: f.Number("quantity", "notionalQuantity"),
		Unit:     f.First("unit", "notionalUnit", "quantityUnit"),
	}
}

// LegQuantity is the per-leg notional; leg keys fall back to the trade level.
type LegQuantity struct {
	Quantity          Number `json:"quantity"`
	QuantityUnit      string `json:"quantityUnit"`
	QuantityFrequency string `json:"quantityFrequency,omitempty"`
}

func buildLegQuantity(f Fields, prefix string) LegQuantity {
	return LegQuantity{
		Quantity:          f.Number(prefix+".quantity", "quantity"),
		QuantityUnit:      f.First(prefix+".quantityUnit", "unit"),
		QuantityFrequency: f.First(prefix+".quantityFrequency", "quantityFrequency"),
	}
}

type DateAdjustments struct {
	BusinessDayConvention string `json:"businessDayConvention"`
}

type AdjustableDateBody struct {
	UnadjustedDate  string          `json:"unadjustedDate"`
	DateAdjustments DateAdjustments `json:"dateAdjustments"`
}

// AdjustableDate encodes as {"adjustableDate": {...}}.
type AdjustableDate struct {
	AdjustableDate AdjustableDateBody `json:"adjustableDate"`
}

// buildAdjustableDate reads "<key>.unadjustedDate" or a plain "<key>" date.
// Returns nil when neither is present.
func buildAdjustableDate(f Fields, key string) *AdjustableDate {
	var date string
	if nested := f.Map(key); nested != nil {
		date = nested.String("unadjustedDate")
	} else {
		date = f.First(key+".unadjustedDate", key)
	}
	if date == "" {
		return nil
	}
	return &AdjustableDate{AdjustableDate: AdjustableDateBody{
		UnadjustedDate: date,
		DateAdjustments: DateAdjustments{
			BusinessDayConvention: f.StringOr(key+".businessDayConvention", "NotApplicable"),
		},
	}}
}

type PaymentDaysOffset struct {
	PeriodMultiplier      Number `json:"periodMultiplier"`
	Period                string `json:"period"`
	DayType               string `json:"dayType"`
	BusinessDayConvention string `json:"businessDayConvention"`
}

type BusinessCenters struct {
	BusinessCenter []string `json:"businessCenter"`
}

type RelativePaymentDates struct {
	PayRelativeTo                       string            `json:"payRelativeTo"`
	CalculationPeriodsScheduleReference *Reference        `json:"calculationPeriodsScheduleReference,omitempty"`
	PaymentDaysOffset                   PaymentDaysOffset `json:"paymentDaysOffset"`
	BusinessCenters                     *BusinessCenters  `json:"businessCenters,omitempty"`
}

// buildRelativePaymentDates reads "<prefix>.payRelativeTo" and friends.
func buildRelativePaymentDates(f Fields, prefix string) *RelativePaymentDates {
	relTo := f.String(prefix + ".payRelativeTo")
	if relTo == "" {
		return nil
	}
	out := &RelativePaymentDates{
		PayRelativeTo:                       relTo,
		CalculationPeriodsScheduleReference: optionalRef(f.String(prefix + ".calculationPeriodsScheduleReference")),
		PaymentDaysOffset: PaymentDaysOffset{
			PeriodMultiplier:      f.Number(prefix + ".paymentDaysOffset.periodMultiplier"),
			Period:                f.StringOr(prefix+".paymentDaysOffset.period", "D"),
			DayType:               f.StringOr(prefix+".paymentDaysOffset.dayType", "Business"),
			BusinessDayConvention: f.StringOr(prefix+".paymentDaysOffset.businessDayConvention", "NONE"),
		},
	}
	if centers := f.Strings(prefix + ".businessCenters"); len(centers) > 0 {
		out.BusinessCenters = &BusinessCenters{BusinessCenter: centers}
	}
	return out
}

type CalculationPeriodsSchedule struct {
	ID                   string `json:"id,omitempty"`
	PeriodMultiplier     Number `json:"periodMultiplier"`
	Period               string `json:"period"`
	BalanceOfFirstPeriod bool   `json:"balanceOfFirstPeriod"`
}

func buildCalculationPeriodsSchedule(f Fields, prefix string) *CalculationPeriodsSchedule {
	key := prefix + ".calculationPeriodsSchedule"
	if !f.Has(key) {
		return nil
	}
	return &CalculationPeriodsSchedule{
		ID:                   f.String(key + ".id"),
		PeriodMultiplier:     f.Number(key+".periodMultiplier", key+".multiplier"),
		Period:               f.StringOr(key+".period", "T"),
		BalanceOfFirstPeriod: f.BoolOr(key+".balanceOfFirstPeriod", false),
	}
}

type Spread struct {
	Amount   Number `json:"amount"`
	Currency string `json:"currency"`
}
