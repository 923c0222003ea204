package models

import "strconv"

// -----------------------------------------------------------------------------
// Brokerage account snapshot. Alpaca serialises monetary values as numeric
// strings; keep them verbatim and convert on demand. Always fetched fresh,
// never cached locally.
// -----------------------------------------------------------------------------

type MAccount struct {
	ID                    string `json:"id"`
	Status                string `json:"status"`
	Currency              string `json:"currency"`
	Cash                  string `json:"cash"`
	PortfolioValue        string `json:"portfolio_value"`
	BuyingPower           string `json:"buying_power"`
	DaytradingBuyingPower string `json:"daytrading_buying_power"`
	Equity                string `json:"equity"`
	LastEquity            string `json:"last_equity"`
}

// -----------------------------------------------------------------------------

// PortfolioValueFloat returns the portfolio value as float64, 0 when unparsable.
func (a *MAccount) PortfolioValueFloat() float64 {
	return parseMoney(a.PortfolioValue)
}

// DaytradingBuyingPowerFloat returns the daytrading buying power, 0 when unparsable.
func (a *MAccount) DaytradingBuyingPowerFloat() float64 {
	return parseMoney(a.DaytradingBuyingPower)
}

// CashFloat returns the cash balance, 0 when unparsable.
func (a *MAccount) CashFloat() float64 {
	return parseMoney(a.Cash)
}

func parseMoney(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
