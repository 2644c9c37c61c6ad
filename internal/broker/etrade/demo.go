package etrade

import "encoding/json"

const (
	demoAccountID = "DEMO_ACCOUNT"
	demoBeta      = 1.15
	demoMessage   = "Demo mode - skipping OAuth for development"
)

var demoAccounts = []Account{
	{AccountIDKey: demoAccountID, AccountName: "Demo Portfolio", AccountType: "INDIVIDUAL"},
}

var demoPositions = []Position{
	{Symbol: "AAPL", SymbolDescription: "Apple Inc.", Quantity: 100, MarketValue: "17,500.00"},
	{Symbol: "MSFT", SymbolDescription: "Microsoft Corporation", Quantity: 50, MarketValue: "18,750.00"},
	{Symbol: "GOOGL", SymbolDescription: "Alphabet Inc.", Quantity: 25, MarketValue: "3,375.00"},
	{Symbol: "TSLA", SymbolDescription: "Tesla Inc.", Quantity: 75, MarketValue: "15,750.00"},
	{Symbol: "SPY", SymbolDescription: "SPDR S&P 500 ETF", Quantity: 200, MarketValue: "89,625.00"},
}

func demoAccountsJSON() json.RawMessage {
	payload := map[string]any{
		"Accounts": map[string]any{
			"Account": demoAccounts,
		},
		"demo_mode": true,
	}
	data, _ := json.Marshal(payload)
	return data
}

func demoPortfolioJSON() json.RawMessage {
	payload := map[string]any{
		"AccountPortfolio": map[string]any{
			"totalValue": "125,000.00",
			"Position":   demoPositions,
		},
	}
	data, _ := json.Marshal(payload)
	return data
}
