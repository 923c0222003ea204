package interfaces

// -----------------------------------------------------------------------------
// ITelemetryPublisher is the fan-out surface: producers hand a message to
// Broadcast and every live subscriber receives it. Delivery is best-effort
// and unordered across subscribers, ordered per subscriber.
// -----------------------------------------------------------------------------

type ITelemetryPublisher interface {

	// Broadcast queues a message for delivery to every connected subscriber.
	// Publishing to an empty subscriber set is a harmless no-op.
	Broadcast(message interface{})

	// -----------------------------------------------------------------------------

	// ClientCount returns the number of currently connected subscribers.
	ClientCount() int
}
