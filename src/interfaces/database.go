package interfaces

import "pluto-lander/src/models"

// -----------------------------------------------------------------------------
// IEventStore defines the contract for the relay event log.
// -----------------------------------------------------------------------------

type IEventStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTradeRecord appends one signal/order row to the event log.
	SaveTradeRecord(rec models.MTradeRecord) error

	// -----------------------------------------------------------------------------

	// RecentTrades returns the newest rows, newest first.
	RecentTrades(limit int) ([]models.MTradeRecord, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
