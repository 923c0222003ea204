package interfaces

import (
	"context"
	"encoding/json"

	"pluto-lander/src/models"
)

// -----------------------------------------------------------------------------
// IBroker abstracts the brokerage REST API. The broker is the system of
// record: list/detail payloads pass through verbatim as json.RawMessage.
//
// Read operations degrade to an empty/absent result (nil, nil) when
// credentials are missing or the call fails; only SubmitOrder and
// CancelOrder surface errors.
// -----------------------------------------------------------------------------

type IBroker interface {

	// IsConfigured reports whether API credentials are currently stored.
	IsConfigured() bool

	// -----------------------------------------------------------------------------

	// GetAccount returns the account snapshot, or nil when unavailable.
	GetAccount(ctx context.Context) (*models.MAccount, error)

	// GetPositions returns all open positions.
	GetPositions(ctx context.Context) (json.RawMessage, error)

	// GetOrders returns order history filtered by status.
	GetOrders(ctx context.Context, status string, limit int) (json.RawMessage, error)

	// -----------------------------------------------------------------------------

	// SubmitOrder sends an order for execution. Fails with
	// helpers.NotConfiguredError or helpers.BrokerRejectedError.
	SubmitOrder(ctx context.Context, req models.MOrderRequest) (json.RawMessage, error)

	// CancelOrder requests cancellation of an open order by ID.
	CancelOrder(ctx context.Context, orderID string) error

	// -----------------------------------------------------------------------------

	// GetLatestQuote returns the latest quote for a symbol, nil when unavailable.
	GetLatestQuote(ctx context.Context, symbol string) (json.RawMessage, error)

	// GetBars returns historical bars for charting.
	GetBars(ctx context.Context, symbol, timeframe string, limit int) (json.RawMessage, error)
}
