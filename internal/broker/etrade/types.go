package etrade

import (
	"encoding/json"
	"net/http"
)

// Config configures the E*TRADE gateway.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	// Environment is "sandbox" or "live".
	Environment  string
	CallbackURL  string
	DashboardURL string
	// DemoMode skips OAuth and upstream calls and serves canned data.
	DemoMode bool

	// APIBaseURL and AuthorizeURL override the environment defaults.
	APIBaseURL   string
	AuthorizeURL string
	// HTTPClient overrides the default client used for token and API calls.
	HTTPClient *http.Client
}

// RequestToken is the temporary token issued at the start of the OAuth flow.
type RequestToken struct {
	Token       string
	TokenSecret string
}

// Account is an E*TRADE brokerage account.
type Account struct {
	AccountIDKey string `json:"accountIdKey"`
	AccountName  string `json:"accountName"`
	AccountType  string `json:"accountType"`
}

// Position is a single holding in an account portfolio.
type Position struct {
	Symbol            string  `json:"symbol"`
	SymbolDescription string  `json:"symbolDescription"`
	Quantity          float64 `json:"quantity"`
	MarketValue       string  `json:"marketValue"`
}

// accountList matches both the bare {"Accounts": ...} shape and the
// {"AccountListResponse": {"Accounts": ...}} envelope returned by the live API.
type accountList struct {
	Accounts struct {
		Account []Account `json:"Account"`
	} `json:"Accounts"`
	AccountListResponse *struct {
		Accounts struct {
			Account []Account `json:"Account"`
		} `json:"Accounts"`
	} `json:"AccountListResponse"`
}

// firstAccountID returns the accountIdKey of the first listed account.
func firstAccountID(raw json.RawMessage) (string, error) {
	var list accountList
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", err
	}

	accounts := list.Accounts.Account
	if list.AccountListResponse != nil && len(list.AccountListResponse.Accounts.Account) > 0 {
		accounts = list.AccountListResponse.Accounts.Account
	}
	if len(accounts) == 0 || accounts[0].AccountIDKey == "" {
		return "", ErrNoAccounts
	}
	return accounts[0].AccountIDKey, nil
}
