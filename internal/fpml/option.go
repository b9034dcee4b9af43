package fpml

import (
	"strings"

	"tradebook/internal/trade"
)

var exerciseStyles = []string{"European", "American", "Bermudan"}

type OptionPremium struct {
	PremiumPaymentDate string `json:"premiumPaymentDate"`
	PremiumPerUnit     Number `json:"premiumPerUnit"`
	TotalPremium       Number `json:"totalPremium"`
}

type CommodityOption struct {
	BuySell          string           `json:"buySell"`
	EffectiveDate    string           `json:"effectiveDate"`
	ExpirationDate   string           `json:"expirationDate"`
	Underlyer        string           `json:"underlyer"`
	NotionalQuantity NotionalQuantity `json:"notionalQuantity"`
	PaymentCurrency  string           `json:"paymentCurrency"`
	PriceUnit        string           `json:"priceUnit"`
	StrikePrice      Number           `json:"strikePrice"`
	Premium          OptionPremium    `json:"premium"`
	ExerciseStyle    string           `json:"exerciseStyle"`
	ExerciseDates    []string         `json:"exerciseDates,omitempty"`
}

func (CommodityOption) ProductTag() string { return "commodityOption" }

// parseExerciseStyle accepts only the exact style names.
func parseExerciseStyle(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, style := range exerciseStyles {
		if style == trimmed {
			return style, nil
		}
	}
	return "", &trade.SemanticValidationError{
		Field:  "exerciseStyle",
		Value:  raw,
		Reason: "expected one of " + strings.Join(exerciseStyles, ", "),
	}
}

func buildOption(f Fields) (Product, error) {
	style, err := parseExerciseStyle(f.First("exerciseStyle", "optionType"))
	if err != nil {
		return nil, err
	}
	notional := buildNotionalQuantity(f)
	perUnit := f.Number("premiumPerUnit")
	total := f.Number("totalPremium")
	if total.IsZero() {
		total = Number{perUnit.Mul(notional.Quantity.Decimal)}
	}
	opt := CommodityOption{
		BuySell:          f.String("buySell"),
		EffectiveDate:    f.String("effectiveDate"),
		ExpirationDate:   f.String("expirationDate"),
		Underlyer:        f.String("underlyer"),
		NotionalQuantity: notional,
		PaymentCurrency:  f.String("paymentCurrency"),
		PriceUnit:        f.String("priceUnit"),
		StrikePrice:      f.Number("strikePrice"),
		Premium: OptionPremium{
			PremiumPaymentDate: f.String("premiumPaymentDate"),
			PremiumPerUnit:     perUnit,
			TotalPremium:       total,
		},
		ExerciseStyle: style,
	}
	if style == "Bermudan" {
		opt.ExerciseDates = f.Strings("exerciseDates")
	}
	return opt, nil
}
