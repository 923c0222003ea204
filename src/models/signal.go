package models

// -----------------------------------------------------------------------------
// Inbound trade signal (Matches the strategy webhook payload)
// -----------------------------------------------------------------------------

type MTradeSignal struct {
	Symbol     string                 `json:"symbol"`
	Side       string                 `json:"side"` // "buy" or "sell"
	Confidence *float64               `json:"confidence"`
	Reason     string                 `json:"reason"`
	Price      *float64               `json:"price"`
	Extra      map[string]interface{} `json:"extra"`
}
