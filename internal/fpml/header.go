package fpml

type PartyTradeIdentifier struct {
	PartyReference string `json:"partyReference"`
	TradeID        string `json:"tradeId"`
}

// PartyEntry encodes as a single-key object, {"internalParty": "..."}.
type PartyEntry struct {
	Role string
	Name string
}

func (p PartyEntry) MarshalJSON() ([]byte, error) {
	return encodeJSON(map[string]string{p.Role: p.Name})
}

type Portfolio struct {
	InternalPortfolio string `json:"internalPortfolio"`
	ExternalPortfolio string `json:"externalPortfolio"`
}

type Trader struct {
	InternalTrader string `json:"internalTrader"`
	ExternalTrader string `json:"externalTrader"`
}

type TradeHeader struct {
	PartyTradeIdentifier PartyTradeIdentifier `json:"partyTradeIdentifier"`
	TradeDate            string               `json:"tradeDate"`
	Parties              []PartyEntry         `json:"parties"`
	Portfolio            Portfolio            `json:"portfolio"`
	Trader               Trader               `json:"trader"`
}

type TradeFooter struct {
	PlaceholderField1 string `json:"placeholderField1"`
	PlaceholderField2 string `json:"placeholderField2"`
}

// internalExternal reads <nested>.internal/external, falling back to the flat
// mapped keys.
func internalExternal(f Fields, nested, flatInternal, flatExternal string) (string, string) {
	internal, external := f.String(flatInternal), f.String(flatExternal)
	if obj := f.Map(nested); obj != nil {
		if s := obj.String("internal"); s != "" {
			internal = s
		}
		if s := obj.String("external"); s != "" {
			external = s
		}
	}
	return internal, external
}

// BuildTradeHeader assembles the header from mapped fields.
func BuildTradeHeader(f Fields) TradeHeader {
	internalParty, externalParty := internalExternal(f, "counterparty", "internalParty", "externalParty")
	internalPortfolio, externalPortfolio := internalExternal(f, "portfolio", "internalPortfolio", "externalPortfolio")
	internalTrader, externalTrader := internalExternal(f, "traders", "internalTrader", "externalTrader")
	partyRef := f.String("partyReference")
	if partyRef == "" {
		partyRef = internalParty
	}
	return TradeHeader{
		PartyTradeIdentifier: PartyTradeIdentifier{
			PartyReference: partyRef,
			TradeID:        f.String("tradeId"),
		},
		TradeDate: f.String("tradeDate"),
		Parties: []PartyEntry{
			{Role: "internalParty", Name: internalParty},
			{Role: "externalParty", Name: externalParty},
		},
		Portfolio: Portfolio{InternalPortfolio: internalPortfolio, ExternalPortfolio: externalPortfolio},
		Trader:    Trader{InternalTrader: internalTrader, ExternalTrader: externalTrader},
	}
}

func BuildTradeFooter(f Fields) TradeFooter {
	return TradeFooter{
		PlaceholderField1: f.String("placeholderField1"),
		PlaceholderField2: f.String("placeholderField2"),
	}
}
