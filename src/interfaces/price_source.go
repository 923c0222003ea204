package interfaces

import "context"

// -----------------------------------------------------------------------------
// IPriceSource supplies the reference price polled for the display
// telemetry. Independent of the brokerage.
// -----------------------------------------------------------------------------

type IPriceSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// SpotPrice fetches the current reference price in USD.
	SpotPrice(ctx context.Context) (float64, error)
}
