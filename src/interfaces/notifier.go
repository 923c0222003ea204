package interfaces

import "pluto-lander/src/models"

// -----------------------------------------------------------------------------
// INotifier delivers email/SMS notifications for a trade signal.
// Best-effort: failures are logged by the implementation and never
// propagate to the telemetry path.
// -----------------------------------------------------------------------------

type INotifier interface {

	// NotifyTradeSignal sends notifications configured in the user settings.
	// Blocks until delivery is attempted; callers wanting fire-and-forget
	// run it in its own goroutine.
	NotifyTradeSignal(settings models.MSettings, msg models.MTelemetryMessage)
}
