package server

import (
	"context"
	"encoding/json"

	"pluto-lander/src/helpers"
	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
)

// -----------------------------------------------------------------------------
// SignalRelay validates inbound trade signals and order requests, forwards
// orders to the brokerage, and publishes the matching telemetry events.
// Notification dispatch is fire-and-forget relative to the telemetry path.
// -----------------------------------------------------------------------------

type SettingsSource interface {
	Current() models.MSettings
}

type SignalRelay struct {
	Broker    interfaces.IBroker
	Publisher interfaces.ITelemetryPublisher
	Notifier  interfaces.INotifier
	Store     interfaces.IEventStore
	Settings  SettingsSource
	Logger    *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSignalRelay(
	broker interfaces.IBroker,
	publisher interfaces.ITelemetryPublisher,
	notif interfaces.INotifier,
	store interfaces.IEventStore,
	settingsSource SettingsSource,
) *SignalRelay {
	return &SignalRelay{
		Broker:    broker,
		Publisher: publisher,
		Notifier:  notif,
		Store:     store,
		Settings:  settingsSource,
		Logger:    logger.NewLogger("SignalRelay"),
	}
}

// -----------------------------------------------------------------------------
// Trade signals
// -----------------------------------------------------------------------------

// IngestSignal validates a strategy signal, publishes a trade_signal
// telemetry event and triggers notifications.
func (r *SignalRelay) IngestSignal(sig models.MTradeSignal) error {
	if sig.Symbol == "" {
		return helpers.NewValidation("signal symbol is required")
	}
	if sig.Side != "buy" && sig.Side != "sell" {
		return helpers.NewValidation("signal side must be 'buy' or 'sell', got '%s'", sig.Side)
	}

	confidence := 0.5
	if sig.Confidence != nil {
		confidence = *sig.Confidence
	}
	if confidence < 0 || confidence > 1 {
		return helpers.NewValidation("signal confidence must be within [0, 1], got %g", confidence)
	}

	msg := models.MTelemetryMessage{
		Type:       models.TelemetryTradeSignal,
		Symbol:     sig.Symbol,
		Side:       sig.Side,
		Confidence: &confidence,
		Reason:     sig.Reason,
		Price:      sig.Price,
		Extra:      sig.Extra,
	}

	r.Publisher.Broadcast(msg)
	r.recordEvent("signal", sig.Symbol, sig.Side, 0, deref(sig.Price), confidence, sig.Reason)

	// Notification is best-effort and must never block or fail the publish
	userSettings := r.Settings.Current()
	go r.Notifier.NotifyTradeSignal(userSettings, msg)

	return nil
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// RelayOrder validates an order request and relays it to the brokerage.
// On success the broker's response passes through verbatim and an
// order_submitted telemetry event is published. A rejected order produces
// no telemetry.
func (r *SignalRelay) RelayOrder(ctx context.Context, req models.MOrderRequest) (json.RawMessage, error) {
	if err := validateOrder(&req); err != nil {
		return nil, err
	}

	result, err := r.Broker.SubmitOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := models.MTelemetryMessage{
		Type:   models.TelemetryOrderSubmitted,
		Symbol: req.Symbol,
		Side:   req.Side,
		Extra: map[string]interface{}{
			"qty":        req.Qty,
			"order_type": req.Type,
		},
	}
	r.Publisher.Broadcast(msg)
	r.recordEvent("order", req.Symbol, req.Side, req.Qty, deref(req.LimitPrice), 0, "")

	return result, nil
}

// -----------------------------------------------------------------------------

// RelayCancel requests cancellation of an open order. No telemetry event is
// published for cancellation.
func (r *SignalRelay) RelayCancel(ctx context.Context, orderID string) bool {
	if err := r.Broker.CancelOrder(ctx, orderID); err != nil {
		r.Logger.Info("Cancel failed for order %s: %v", orderID, err)
		return false
	}
	return true
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

// validateOrder checks the request and fills defaults in place.
func validateOrder(req *models.MOrderRequest) error {
	if req.Symbol == "" {
		return helpers.NewValidation("order symbol is required")
	}
	if req.Qty <= 0 {
		return helpers.NewValidation("order qty must be positive, got %g", req.Qty)
	}
	if req.Side != "buy" && req.Side != "sell" {
		return helpers.NewValidation("order side must be 'buy' or 'sell', got '%s'", req.Side)
	}

	if req.Type == "" {
		req.Type = "market"
	}
	if req.Type != "market" && req.Type != "limit" {
		return helpers.NewValidation("order type must be 'market' or 'limit', got '%s'", req.Type)
	}
	if req.Type == "limit" && req.LimitPrice == nil {
		return helpers.NewValidation("limit orders require limit_price")
	}

	if req.TimeInForce == "" {
		req.TimeInForce = "day"
	}
	return nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (r *SignalRelay) recordEvent(kind, symbol, side string, qty, price, confidence float64, reason string) {
	if r.Store == nil {
		return
	}
	err := r.Store.SaveTradeRecord(models.MTradeRecord{
		Kind:       kind,
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		Price:      price,
		Confidence: confidence,
		Reason:     reason,
	})
	if err != nil {
		r.Logger.Error("Failed to record %s event: %v", kind, err)
	}
}

// -----------------------------------------------------------------------------

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
