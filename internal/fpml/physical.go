package fpml

import "tradebook/internal/trade"

// PhysicalLegs holds the single delivery leg; exactly one field is set.
type PhysicalLegs struct {
	GasPhysicalLeg         *PhysicalLeg `json:"gasPhysicalLeg,omitempty"`
	OilPhysicalLeg         *PhysicalLeg `json:"oilPhysicalLeg,omitempty"`
	ElectricityPhysicalLeg *PhysicalLeg `json:"electricityPhysicalLeg,omitempty"`
	CoalPhysicalLeg        *PhysicalLeg `json:"coalPhysicalLeg,omitempty"`
	BullionPhysicalLeg     *PhysicalLeg `json:"bullionPhysicalLeg,omitempty"`
}

// PhysicalSwap is the commoditySwap envelope for physically settled trades.
type PhysicalSwap struct {
	EffectiveDate      *AdjustableDate `json:"effectiveDate,omitempty"`
	TerminationDate    *AdjustableDate `json:"terminationDate,omitempty"`
	SettlementCurrency string          `json:"settlementCurrency"`
	PhysicalLegs
	FixedLeg    *PhysicalFixedLeg    `json:"fixedLeg,omitempty"`
	FloatingLeg *PhysicalFloatingLeg `json:"floatingLeg,omitempty"`
}

func (PhysicalSwap) ProductTag() string { return "commoditySwap" }

// PhysicalForward is the commodityForward envelope used for bullion.
type PhysicalForward struct {
	ValueDate *AdjustableDate `json:"valueDate,omitempty"`
	PhysicalLegs
	FixedLeg    *PhysicalFixedLeg    `json:"fixedLeg,omitempty"`
	FloatingLeg *PhysicalFloatingLeg `json:"floatingLeg,omitempty"`
}

func (PhysicalForward) ProductTag() string { return "commodityForward" }

type PeriodsSchedule struct {
	ID                   string `json:"id"`
	PeriodMultiplier     Number `json:"periodMultiplier"`
	Period               string `json:"period"`
	BalanceOfFirstPeriod bool   `json:"balanceOfFirstPeriod"`
}

type DeliveryPeriods struct {
	PeriodsSchedule PeriodsSchedule `json:"periodsSchedule"`
}

type GasProduct struct {
	Type    string `json:"type"`
	Quality string `json:"quality,omitempty"`
}

type OilProduct struct {
	Type  string `json:"type"`
	Grade string `json:"grade,omitempty"`
}

type ElectricityProduct struct {
	Type string `json:"type"`
}

type CoalProduct struct {
	Type    string `json:"type"`
	Quality string `json:"quality,omitempty"`
}

type DeliveryConditions struct {
	DeliveryPoint           string `json:"deliveryPoint,omitempty"`
	DeliveryType            string `json:"deliveryType,omitempty"`
	PipelineName            string `json:"pipelineName,omitempty"`
	WithdrawalPoint         string `json:"withdrawalPoint,omitempty"`
	EntryPoint              string `json:"entryPoint,omitempty"`
	DeliverableByBarge      *bool  `json:"deliverableByBarge,omitempty"`
	TransmissionContingency string `json:"transmissionContingency,omitempty"`
	DeliveryAtSource        *bool  `json:"deliveryAtSource,omitempty"`
	TransportationEquipment string `json:"transportationEquipment,omitempty"`
}

type SettlementPeriods struct {
	Duration      string   `json:"duration"`
	ApplicableDay []string `json:"applicableDay,omitempty"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
}

type PhysicalQuantity struct {
	Quantity          Number `json:"quantity"`
	QuantityUnit      string `json:"quantityUnit"`
	QuantityFrequency string `json:"quantityFrequency,omitempty"`
}

type TotalPhysicalQuantity struct {
	Quantity     Number `json:"quantity"`
	QuantityUnit string `json:"quantityUnit"`
}

type QuantitySchedule struct {
	QuantityStep                     []PhysicalQuantity `json:"quantityStep"`
	DeliveryPeriodsScheduleReference *Reference         `json:"deliveryPeriodsScheduleReference,omitempty"`
	SettlementPeriodsReference       []Reference        `json:"settlementPeriodsReference,omitempty"`
}

type DeliveryQuantity struct {
	PhysicalQuantity         *PhysicalQuantity      `json:"physicalQuantity,omitempty"`
	TotalPhysicalQuantity    *TotalPhysicalQuantity `json:"totalPhysicalQuantity,omitempty"`
	PhysicalQuantitySchedule []QuantitySchedule     `json:"physicalQuantitySchedule,omitempty"`
}

type PhysicalLeg struct {
	PayerPartyReference    Reference           `json:"payerPartyReference"`
	ReceiverPartyReference Reference           `json:"receiverPartyReference"`
	DeliveryPeriods        *DeliveryPeriods    `json:"deliveryPeriods,omitempty"`
	Gas                    *GasProduct         `json:"gas,omitempty"`
	Oil                    *OilProduct         `json:"oil,omitempty"`
	Electricity            *ElectricityProduct `json:"electricity,omitempty"`
	Coal                   *CoalProduct        `json:"coal,omitempty"`
	BullionType            string              `json:"bullionType,omitempty"`
	DeliveryLocation       string              `json:"deliveryLocation,omitempty"`
	DeliveryConditions     *DeliveryConditions `json:"deliveryConditions,omitempty"`
	SettlementPeriods      *SettlementPeriods  `json:"settlementPeriods,omitempty"`
	DeliveryQuantity       DeliveryQuantity    `json:"deliveryQuantity"`
}

type PhysicalFixedLeg struct {
	PayerPartyReference         Reference  `json:"payerPartyReference"`
	ReceiverPartyReference      Reference  `json:"receiverPartyReference"`
	FixedPrice                  FixedPrice `json:"fixedPrice"`
	QuantityReference           Reference  `json:"quantityReference"`
	MasterAgreementPaymentDates bool       `json:"masterAgreementPaymentDates"`
}

type PhysicalFloatingLeg struct {
	PayerPartyReference         Reference           `json:"payerPartyReference"`
	ReceiverPartyReference      Reference           `json:"receiverPartyReference"`
	Commodity                   FloatingCommodity   `json:"commodity"`
	QuantityReference           Reference           `json:"quantityReference"`
	Calculation                 FloatingCalculation `json:"calculation"`
	MasterAgreementPaymentDates bool                `json:"masterAgreementPaymentDates"`
}

// physicalKind describes one delivered commodity.
type physicalKind struct {
	attach     func(legs *PhysicalLegs, leg *PhysicalLeg)
	details    func(f Fields, leg *PhysicalLeg)
	conditions func(f Fields, leg *PhysicalLeg)
	forward    bool
}

var physicalKinds = map[trade.SubInstrument]physicalKind{
	trade.SubGasPhysical: {
		attach: func(l *PhysicalLegs, leg *PhysicalLeg) { l.GasPhysicalLeg = leg },
		details: func(f Fields, leg *PhysicalLeg) {
			leg.Gas = &GasProduct{Type: f.StringOr("gasType", "NaturalGas"), Quality: f.String("gasQuality")}
		},
		conditions: func(f Fields, leg *PhysicalLeg) {
			leg.DeliveryConditions = &DeliveryConditions{
				DeliveryPoint: f.String("deliveryPoint"),
				DeliveryType:  f.StringOr("deliveryType", "Firm"),
			}
		},
	},
	trade.SubOilPhysical: {
		attach: func(l *PhysicalLegs, leg *PhysicalLeg) { l.OilPhysicalLeg = leg },
		details: func(f Fields, leg *PhysicalLeg) {
			leg.Oil = &OilProduct{Type: f.String("oilType"), Grade: f.String("oilGrade")}
		},
		conditions: func(f Fields, leg *PhysicalLeg) {
			cond := &DeliveryConditions{
				PipelineName:    f.String("pipelineName"),
				WithdrawalPoint: f.String("withdrawalPoint"),
				EntryPoint:      f.String("entryPoint"),
			}
			if f.Has("deliverableByBarge") {
				barge := f.BoolOr("deliverableByBarge", false)
				cond.DeliverableByBarge = &barge
			}
			leg.DeliveryConditions = cond
		},
	},
	trade.SubElectricityPhysical: {
		attach: func(l *PhysicalLegs, leg *PhysicalLeg) { l.ElectricityPhysicalLeg = leg },
		details: func(f Fields, leg *PhysicalLeg) {
			leg.Electricity = &ElectricityProduct{Type: f.StringOr("electricityType", "Electricity")}
			if f.Has("settlementPeriods.duration") {
				leg.SettlementPeriods = &SettlementPeriods{
					Duration:      f.String("settlementPeriods.duration"),
					ApplicableDay: f.Strings("settlementPeriods.applicableDay"),
					StartTime:     f.String("settlementPeriods.startTime"),
					EndTime:       f.String("settlementPeriods.endTime"),
				}
			}
		},
		conditions: func(f Fields, leg *PhysicalLeg) {
			leg.DeliveryConditions = &DeliveryConditions{
				DeliveryPoint:           f.String("deliveryPoint"),
				DeliveryType:            f.StringOr("deliveryType", "Firm"),
				TransmissionContingency: f.String("transmissionContingency"),
			}
		},
	},
	trade.SubCoalPhysical: {
		attach: func(l *PhysicalLegs, leg *PhysicalLeg) { l.CoalPhysicalLeg = leg },
		details: func(f Fields, leg *PhysicalLeg) {
			leg.Coal = &CoalProduct{Type: f.String("coalType"), Quality: f.String("coalQuality")}
		},
		conditions: func(f Fields, leg *PhysicalLeg) {
			cond := &DeliveryConditions{
				DeliveryPoint:           f.String("deliveryPoint"),
				TransportationEquipment: f.String("transportationEquipment"),
			}
			if f.Has("deliveryAtSource") {
				atSource := f.BoolOr("deliveryAtSource", false)
				cond.DeliveryAtSource = &atSource
			}
			leg.DeliveryConditions = cond
		},
	},
	trade.SubBullionPhysical: {
		attach: func(l *PhysicalLegs, leg *PhysicalLeg) { l.BullionPhysicalLeg = leg },
		details: func(f Fields, leg *PhysicalLeg) {
			leg.BullionType = f.StringOr("bullionType", "Gold")
			leg.DeliveryLocation = f.String("deliveryLocation")
		},
		conditions: func(Fields, *PhysicalLeg) {},
		forward:    true,
	},
}

// resolvePhysicalKind prefers the classified sub, then the sub_instrument_type field.
func resolvePhysicalKind(sub trade.SubInstrument, f Fields) (trade.SubInstrument, physicalKind, error) {
	if kind, ok := physicalKinds[sub]; ok {
		return sub, kind, nil
	}
	raw := f.String("sub_instrument_type")
	if parsed, ok := trade.ParseSubInstrument(trade.InstrumentPhysical, raw); ok {
		if kind, ok := physicalKinds[parsed]; ok {
			return parsed, kind, nil
		}
	}
	if raw == "" {
		raw = string(sub)
	}
	return "", physicalKind{}, &trade.UnsupportedSubInstrumentError{Instrument: trade.InstrumentPhysical, Value: raw}
}

func buildPhysical(sub trade.SubInstrument, f Fields) (Product, error) {
	_, kind, err := resolvePhysicalKind(sub, f)
	if err != nil {
		return nil, err
	}
	leg := &PhysicalLeg{
		PayerPartyReference:    ref(f.String("payerPartyReference")),
		ReceiverPartyReference: ref(f.String("receiverPartyReference")),
		DeliveryQuantity:       buildDeliveryQuantity(f),
	}
	if f.BoolOr("hasDeliveryPeriods", false) {
		leg.DeliveryPeriods = &DeliveryPeriods{PeriodsSchedule: PeriodsSchedule{
			ID:                   "deliveryPeriods",
			PeriodMultiplier:     f.Number("periodMultiplier"),
			Period:               f.StringOr("period", "T"),
			BalanceOfFirstPeriod: f.BoolOr("balanceOfFirstPeriod", false),
		}}
		if leg.DeliveryPeriods.PeriodsSchedule.PeriodMultiplier.IsZero() {
			leg.DeliveryPeriods.PeriodsSchedule.PeriodMultiplier = Number{one}
		}
	}
	kind.details(f, leg)
	kind.conditions(f, leg)

	var legs PhysicalLegs
	kind.attach(&legs, leg)

	var fixed *PhysicalFixedLeg
	if f.BoolOr("hasFixedLeg", sub == trade.SubFixedPhysical) {
		fixed = buildPhysicalFixedLeg(f)
	}
	var floating *PhysicalFloatingLeg
	if f.BoolOr("hasFloatingLeg", sub == trade.SubIndexPhysical) {
		floating = buildPhysicalFloatingLeg(f)
	}

	if kind.forward {
		return PhysicalForward{
			ValueDate:    buildAdjustableDate(f, "valueDate"),
			PhysicalLegs: legs,
			FixedLeg:     fixed,
			FloatingLeg:  floating,
		}, nil
	}
	return PhysicalSwap{
		EffectiveDate:      buildAdjustableDate(f, "effectiveDate"),
		TerminationDate:    buildAdjustableDate(f, "terminationDate"),
		SettlementCurrency: f.String("settlementCurrency"),
		PhysicalLegs:       legs,
		FixedLeg:           fixed,
		FloatingLeg:        floating,
	}, nil
}

func buildDeliveryQuantity(f Fields) DeliveryQuantity {
	if f.BoolOr("hasShapedQuantity", false) {
		steps := f.Maps("quantitySteps")
		schedule := QuantitySchedule{
			QuantityStep:                     make([]PhysicalQuantity, 0, len(steps)),
			DeliveryPeriodsScheduleReference: optionalRef(f.String("deliveryPeriodsScheduleReference")),
		}
		for _, step := range steps {
			schedule.QuantityStep = append(schedule.QuantityStep, PhysicalQuantity{
				Quantity:          step.Number("quantity"),
				QuantityUnit:      step.First("quantityUnit", "unit"),
				QuantityFrequency: step.String("quantityFrequency"),
			})
		}
		for _, href := range f.Strings("settlementPeriodsRefs") {
			schedule.SettlementPeriodsReference = append(schedule.SettlementPeriodsReference, ref(href))
		}
		return DeliveryQuantity{PhysicalQuantitySchedule: []QuantitySchedule{schedule}}
	}
	out := DeliveryQuantity{PhysicalQuantity: &PhysicalQuantity{
		Quantity:          f.Number("quantity", "notionalQuantity"),
		QuantityUnit:      f.First("quantityUnit", "unit"),
		QuantityFrequency: f.String("quantityFrequency"),
	}}
	if total := f.OptionalNumber("totalQuantity"); total != nil {
		out.TotalPhysicalQuantity = &TotalPhysicalQuantity{
			Quantity:     *total,
			QuantityUnit: f.First("totalQuantityUnit", "quantityUnit", "unit"),
		}
	}
	return out
}

func buildPhysicalFixedLeg(f Fields) *PhysicalFixedLeg {
	return &PhysicalFixedLeg{
		PayerPartyReference:    ref(f.String("fixedLeg.payerPartyReference")),
		ReceiverPartyReference: ref(f.String("fixedLeg.receiverPartyReference")),
		FixedPrice: FixedPrice{
			Price:         f.Number("fixedLeg.price", "fixedPrice"),
			PriceCurrency: f.First("fixedLeg.priceCurrency", "settlementCurrency"),
			PriceUnit:     f.First("fixedLeg.priceUnit", "priceUnit"),
		},
		QuantityReference:           ref(f.StringOr("fixedLeg.quantityReference", "deliveryQuantity")),
		MasterAgreementPaymentDates: f.BoolOr("fixedLeg.masterAgreementPaymentDates", true),
	}
}

func buildPhysicalFloatingLeg(f Fields) *PhysicalFloatingLeg {
	return &PhysicalFloatingLeg{
		PayerPartyReference:    ref(f.String("floatingLeg.payerPartyReference")),
		ReceiverPartyReference: ref(f.String("floatingLeg.receiverPartyReference")),
		Commodity: FloatingCommodity{
			InstrumentID:   f.First("floatingLeg.instrumentId", "referencePrice"),
			SpecifiedPrice: f.StringOr("floatingLeg.specifiedPrice", "Settlement"),
		},
		QuantityReference: ref(f.StringOr("floatingLeg.quantityReference", "deliveryQuantity")),
		Calculation: FloatingCalculation{
			PricingDates: &PricingDates{
				CalculationPeriodsScheduleReference: optionalRef(f.String("floatingLeg.calculationPeriodsScheduleReference")),
				DayType:                             f.String("floatingLeg.dayType"),
				DayDistribution:                     f.String("floatingLeg.dayDistribution"),
			},
			Spread: buildSpread(f, "floatingLeg", "spread"),
		},
		MasterAgreementPaymentDates: f.BoolOr("floatingLeg.masterAgreementPaymentDates", true),
	}
}
