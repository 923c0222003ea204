package models

// -----------------------------------------------------------------------------
// Telemetry wire types (Matches the dashboard/ESP32 JSON contract)
// -----------------------------------------------------------------------------

// Message kinds pushed over /ws/telemetry.
const (
	TelemetryTradeSignal    = "trade_signal"
	TelemetryOrderSubmitted = "order_submitted"
	TelemetrySnapshotType   = "telemetry"
	TelemetryPong           = "pong"
)

// MTelemetryMessage is one unit of fan-out data. Immutable once built;
// every subscriber receives the same value.
type MTelemetryMessage struct {
	Type       string                 `json:"type"`
	Symbol     string                 `json:"symbol,omitempty"`
	Side       string                 `json:"side,omitempty"`
	Confidence *float64               `json:"confidence,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	Price      *float64               `json:"price,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// -----------------------------------------------------------------------------

// MTelemetrySnapshot is the periodic display snapshot produced by the poller.
type MTelemetrySnapshot struct {
	Type         string    `json:"type"` // always "telemetry"
	BTCPrice     float64   `json:"btc_price"`
	BTCChange24h float64   `json:"btc_change_24h"`
	ProfitUSD    float64   `json:"profit_usd"`
	ProfitToday  float64   `json:"profit_today"`
	Mode         string    `json:"mode"` // "live" or "standby"
	Sparkline    []float64 `json:"sparkline"`
}
