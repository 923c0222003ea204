package models

// -----------------------------------------------------------------------------
// Order request relayed to the brokerage (broker is system of record,
// nothing is persisted locally besides the event log)
// -----------------------------------------------------------------------------

type MOrderRequest struct {
	Symbol      string   `json:"symbol"`
	Qty         float64  `json:"qty"`
	Side        string   `json:"side"`          // "buy" or "sell"
	Type        string   `json:"type"`          // "market" or "limit"
	TimeInForce string   `json:"time_in_force"` // defaults to "day"
	LimitPrice  *float64 `json:"limit_price"`   // required iff Type == "limit"
}
