package fpml

type CommodityForward struct {
	BuySell          string           `json:"buySell"`
	TradeDate        string           `json:"tradeDate"`
	EffectiveDate    string           `json:"effectiveDate"`
	TerminationDate  string           `json:"terminationDate"`
	Underlyer        string           `json:"underlyer"`
	NotionalQuantity NotionalQuantity `json:"notionalQuantity"`
	PaymentCurrency  string           `json:"paymentCurrency"`
	PriceUnit        string           `json:"priceUnit"`
	FixedPrice       Number           `json:"fixedPrice"`
	DeliveryLocation string           `json:"deliveryLocation"`
}

func (CommodityForward) ProductTag() string { return "commodityForward" }

func buildForward(f Fields) Product {
	return CommodityForward{
		BuySell:          f.String("buySell"),
		TradeDate:        f.String("tradeDate"),
		EffectiveDate:    f.String("effectiveDate"),
		TerminationDate:  f.String("terminationDate"),
		Underlyer:        f.String("underlyer"),
		NotionalQuantity: buildNotionalQuantity(f),
		PaymentCurrency:  f.String("paymentCurrency"),
		PriceUnit:        f.String("priceUnit"),
		FixedPrice:       f.Number("fixedPrice"),
		DeliveryLocation: f.String("deliveryLocation"),
	}
}

type CommodityFuture struct {
	BuySell          string           `json:"buySell"`
	TradeDate        string           `json:"tradeDate"`
	ExpiryDate       string           `json:"expiryDate"`
	Underlyer        string           `json:"underlyer"`
	NotionalQuantity NotionalQuantity `json:"notionalQuantity"`
	PaymentCurrency  string           `json:"paymentCurrency"`
	PriceUnit        string           `json:"priceUnit"`
	ContractPrice    Number           `json:"contractPrice"`
	Exchange         string           `json:"exchange"`
	DeliveryLocation string           `json:"deliveryLocation"`
}

func (CommodityFuture) ProductTag() string { return "commodityFuture" }

func buildFuture(f Fields) Product {
	return CommodityFuture{
		BuySell:          f.String("buySell"),
		TradeDate:        f.String("tradeDate"),
		ExpiryDate:       f.String("expiryDate"),
		Underlyer:        f.String("underlyer"),
		NotionalQuantity: buildNotionalQuantity(f),
		PaymentCurrency:  f.String("paymentCurrency"),
		PriceUnit:        f.String("priceUnit"),
		ContractPrice:    f.Number("contractPrice"),
		Exchange:         f.String("exchange"),
		DeliveryLocation: f.String("deliveryLocation"),
	}
}

type Money struct {
	Amount   Number `json:"amount"`
	Currency string `json:"currency"`
}

type FxTrade struct {
	BuySell        string `json:"buySell"`
	TradeDate      string `json:"tradeDate"`
	SettlementDate string `json:"settlementDate"`
	CurrencyPair   string `json:"currencyPair"`
	NotionalAmount Money  `json:"notionalAmount"`
	Rate           Number `json:"rate"`
}

func (FxTrade) ProductTag() string { return "fxTrade" }

func buildFX(f Fields) Product {
	return FxTrade{
		BuySell:        f.String("buySell"),
		TradeDate:      f.String("tradeDate"),
		SettlementDate: f.String("settlementDate"),
		CurrencyPair:   f.String("currencyPair"),
		NotionalAmount: Money{
			Amount:   f.Number("notionalAmount"),
			Currency: f.First("notionalCurrency", "currency"),
		},
		Rate: f.Number("rate"),
	}
}

type SwaptionPremium struct {
	PremiumPaymentDate string `json:"premiumPaymentDate"`
	TotalPremium       Number `json:"totalPremium"`
}

type UnderlyingSwap struct {
	EffectiveDate   string `json:"effectiveDate"`
	TerminationDate string `json:"terminationDate"`
}

type CommoditySwaption struct {
	BuySell          string           `json:"buySell"`
	TradeDate        string           `json:"tradeDate"`
	ExpirationDate   string           `json:"expirationDate"`
	ExerciseStyle    string           `json:"exerciseStyle"`
	Underlyer        string           `json:"underlyer"`
	NotionalQuantity NotionalQuantity `json:"notionalQuantity"`
	PaymentCurrency  string           `json:"paymentCurrency"`
	StrikePrice      Number           `json:"strikePrice"`
	Premium          SwaptionPremium  `json:"premium"`
	UnderlyingSwap   UnderlyingSwap   `json:"underlyingSwap"`
}

func (CommoditySwaption) ProductTag() string { return "commoditySwaption" }

func buildSwaption(f Fields) Product {
	return CommoditySwaption{
		BuySell:          f.String("buySell"),
		TradeDate:        f.String("tradeDate"),
		ExpirationDate:   f.String("expirationDate"),
		ExerciseStyle:    f.String("exerciseStyle"),
		Underlyer:        f.String("underlyer"),
		NotionalQuantity: buildNotionalQuantity(f),
		PaymentCurrency:  f.String("paymentCurrency"),
		StrikePrice:      f.Number("strikePrice"),
		Premium: SwaptionPremium{
			PremiumPaymentDate: f.String("premiumPaymentDate"),
			TotalPremium:       f.Number("totalPremium"),
		},
		UnderlyingSwap: UnderlyingSwap{
			EffectiveDate:   f.First("swapEffectiveDate", "effectiveDate"),
			TerminationDate: f.First("swapTerminationDate", "terminationDate"),
		},
	}
}

type CashTrade struct {
	BuySell       string `json:"buySell"`
	TradeDate     string `json:"tradeDate"`
	PaymentDate   string `json:"paymentDate"`
	PaymentAmount Money  `json:"paymentAmount"`
}

func (CashTrade) ProductTag() string { return "cashTrade" }

func buildCash(f Fields) Product {
	return CashTrade{
		BuySell:     f.String("buySell"),
		TradeDate:   f.String("tradeDate"),
		PaymentDate: f.String("paymentDate"),
		PaymentAmount: Money{
			Amount:   f.Number("paymentAmount"),
			Currency: f.String("paymentCurrency"),
		},
	}
}
