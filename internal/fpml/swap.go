package fpml

import "tradebook/internal/trade"

type CommoditySwap struct {
	BuySell            string            `json:"buySell"`
	EffectiveDate      *AdjustableDate   `json:"effectiveDate,omitempty"`
	TerminationDate    *AdjustableDate   `json:"terminationDate,omitempty"`
	Underlyer          string            `json:"underlyer"`
	NotionalQuantity   NotionalQuantity  `json:"notionalQuantity"`
	SettlementCurrency string            `json:"settlementCurrency"`
	FixedLeg           *FixedPriceLeg    `json:"fixedLeg,omitempty"`
	FloatingLeg        *FloatingPriceLeg `json:"floatingLeg,omitempty"`
	FloatLeg1          *FloatingPriceLeg `json:"floatLeg1,omitempty"`
	FloatLeg2          *FloatingPriceLeg `json:"floatLeg2,omitempty"`
}

func (CommoditySwap) ProductTag() string { return "commoditySwap" }

type FixedPrice struct {
	Price         Number `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	PriceUnit     string `json:"priceUnit"`
}

type FixedPriceLeg struct {
	PayerPartyReference                 Reference             `json:"payerPartyReference"`
	ReceiverPartyReference              Reference             `json:"receiverPartyReference"`
	CalculationPeriodsScheduleReference *Reference            `json:"calculationPeriodsScheduleReference,omitempty"`
	FixedPrice                          FixedPrice            `json:"fixedPrice"`
	NotionalQuantity                    LegQuantity           `json:"notionalQuantity"`
	TotalNotionalQuantity               *Number               `json:"totalNotionalQuantity,omitempty"`
	RelativePaymentDates                *RelativePaymentDates `json:"relativePaymentDates,omitempty"`
}

type FloatingCommodity struct {
	InstrumentID   string `json:"instrumentId"`
	SpecifiedPrice string `json:"specifiedPrice"`
	DeliveryDates  string `json:"deliveryDates,omitempty"`
}

type PricingDates struct {
	CalculationPeriodsScheduleReference *Reference `json:"calculationPeriodsScheduleReference,omitempty"`
	DayType                             string     `json:"dayType,omitempty"`
	DayDistribution                     string     `json:"dayDistribution,omitempty"`
	BusinessCalendar                    string     `json:"businessCalendar,omitempty"`
}

type FloatingCalculation struct {
	PricingDates *PricingDates `json:"pricingDates,omitempty"`
	Spread       *Spread       `json:"spread,omitempty"`
}

type FloatingPriceLeg struct {
	ID                                  string                      `json:"id,omitempty"`
	PayerPartyReference                 Reference                   `json:"payerPartyReference"`
	ReceiverPartyReference              Reference                   `json:"receiverPartyReference"`
	CalculationPeriodsSchedule          *CalculationPeriodsSchedule `json:"calculationPeriodsSchedule,omitempty"`
	CalculationPeriodsScheduleReference *Reference                  `json:"calculationPeriodsScheduleReference,omitempty"`
	Commodity                           FloatingCommodity           `json:"commodity"`
	ResetDates                          []string                    `json:"resetDates,omitempty"`
	NotionalQuantity                    LegQuantity                 `json:"notionalQuantity"`
	TotalNotionalQuantity               *Number                     `json:"totalNotionalQuantity,omitempty"`
	Calculation                         *FloatingCalculation        `json:"calculation,omitempty"`
	RelativePaymentDates                *RelativePaymentDates       `json:"relativePaymentDates,omitempty"`
}

// floatAliases names the flat mapped keys a floating leg falls back to.
type floatAliases struct {
	reference string
	resets    string
}

func buildSwap(sub trade.SubInstrument, f Fields) (Product, error) {
	swap := CommoditySwap{
		BuySell:            f.String("buySell"),
		EffectiveDate:      buildAdjustableDate(f, "effectiveDate"),
		TerminationDate:    buildAdjustableDate(f, "terminationDate"),
		Underlyer:          f.String("underlyer"),
		NotionalQuantity:   buildNotionalQuantity(f),
		SettlementCurrency: f.String("settlementCurrency"),
	}
	switch sub {
	case trade.SubFixedFloat:
		swap.FixedLeg = buildFixedLeg(f, "fixedLeg")
		swap.FloatingLeg = buildFloatingLeg(f, "floatingLeg", floatAliases{reference: "referencePrice", resets: "resetDates"})
	case trade.SubFloatFloat:
		swap.FloatLeg1 = buildFloatingLeg(f, "floatLeg1", floatAliases{reference: "floatLeg1Reference", resets: "floatLeg1ResetDates"})
		swap.FloatLeg1.ID = "floatLeg1"
		swap.FloatLeg2 = buildFloatingLeg(f, "floatLeg2", floatAliases{reference: "floatLeg2Reference", resets: "floatLeg2ResetDates"})
		swap.FloatLeg2.ID = "floatLeg2"
		if spread := buildSpread(f, "floatLeg2", "spread"); spread != nil {
			if swap.FloatLeg2.Calculation == nil {
				swap.FloatLeg2.Calculation = &FloatingCalculation{}
			}
			swap.FloatLeg2.Calculation.Spread = spread
		}
	default:
		return nil, &trade.UnsupportedSubInstrumentError{Instrument: trade.InstrumentSwap, Value: string(sub)}
	}
	return swap, nil
}

func buildFixedLeg(f Fields, prefix string) *FixedPriceLeg {
	return &FixedPriceLeg{
		PayerPartyReference:                 ref(f.String(prefix + ".payerPartyReference")),
		ReceiverPartyReference:              ref(f.String(prefix + ".receiverPartyReference")),
		CalculationPeriodsScheduleReference: optionalRef(f.String(prefix + ".calculationPeriodsScheduleReference")),
		FixedPrice: FixedPrice{
			Price:         f.Number(prefix+".price", "fixedPrice"),
			PriceCurrency: f.First(prefix+".priceCurrency", "settlementCurrency"),
			PriceUnit:     f.First(prefix+".priceUnit", "priceUnit"),
		},
		NotionalQuantity:      buildLegQuantity(f, prefix),
		TotalNotionalQuantity: f.OptionalNumber(prefix + ".totalNotionalQuantity"),
		RelativePaymentDates:  buildRelativePaymentDates(f, prefix),
	}
}

func buildFloatingLeg(f Fields, prefix string, alias floatAliases) *FloatingPriceLeg {
	leg := &FloatingPriceLeg{
		PayerPartyReference:                 ref(f.String(prefix + ".payerPartyReference")),
		ReceiverPartyReference:              ref(f.String(prefix + ".receiverPartyReference")),
		CalculationPeriodsSchedule:          buildCalculationPeriodsSchedule(f, prefix),
		CalculationPeriodsScheduleReference: optionalRef(f.String(prefix + ".calculationPeriodsScheduleReference")),
		Commodity: FloatingCommodity{
			InstrumentID:   f.First(prefix+".instrumentId", prefix+".referencePrice", alias.reference),
			SpecifiedPrice: f.StringOr(prefix+".specifiedPrice", "Settlement"),
			DeliveryDates:  f.String(prefix + ".deliveryDates"),
		},
		ResetDates:            f.Strings(prefix + ".resetDates"),
		NotionalQuantity:      buildLegQuantity(f, prefix),
		TotalNotionalQuantity: f.OptionalNumber(prefix + ".totalNotionalQuantity"),
		RelativePaymentDates:  buildRelativePaymentDates(f, prefix),
	}
	if len(leg.ResetDates) == 0 {
		leg.ResetDates = f.Strings(alias.resets)
	}
	if f.Has(prefix+".dayType") || f.Has(prefix+".dayDistribution") {
		leg.Calculation = &FloatingCalculation{PricingDates: &PricingDates{
			CalculationPeriodsScheduleReference: leg.CalculationPeriodsScheduleReference,
			DayType:                             f.String(prefix + ".dayType"),
			DayDistribution:                     f.String(prefix + ".dayDistribution"),
			BusinessCalendar:                    f.String(prefix + ".businessCalendar"),
		}}
	}
	return leg
}

// buildSpread reads "<prefix>.spreadAmount" or the flat alias; nil when absent.
func buildSpread(f Fields, prefix, alias string) *Spread {
	amount := f.OptionalNumber(prefix+".spreadAmount", alias)
	if amount == nil {
		return nil
	}
	return &Spread{
		Amount:   *amount,
		Currency: f.First(prefix+".spreadCurrency", "settlementCurrency"),
	}
}
