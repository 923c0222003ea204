package models

import "time"

// -----------------------------------------------------------------------------
// MTradeRecord is one row of the relay event log: an ingested trade signal
// or a submitted order. Backs the dashboard trades-history page. Telemetry
// fan-out itself is ephemeral; only relay inputs are recorded.
// -----------------------------------------------------------------------------

type MTradeRecord struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"` // "signal" or "order"
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Qty        float64   `json:"qty"`
	Price      float64   `json:"price"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
