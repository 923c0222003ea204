package storage

import (
	"database/sql"
	"fmt"
	"time"

	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

var _ interfaces.IEventStore = (*SQLiteStore)(nil)

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS trade_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT,
			qty REAL,
			price REAL,
			confidence REAL,
			reason TEXT,
			created_at TIMESTAMP NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create trade_events: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveTradeRecord(rec models.MTradeRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := d.DB.Exec(`
		INSERT INTO trade_events (kind, symbol, side, qty, price, confidence, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Kind, rec.Symbol, rec.Side, rec.Qty, rec.Price, rec.Confidence, rec.Reason, createdAt)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) RecentTrades(limit int) ([]models.MTradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.DB.Query(`
		SELECT id, kind, symbol, side, qty, price, confidence, reason, created_at
		FROM trade_events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MTradeRecord
	for rows.Next() {
		var rec models.MTradeRecord
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Symbol, &rec.Side, &rec.Qty,
			&rec.Price, &rec.Confidence, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
