package storage

import (
	"database/sql"
	"fmt"
	"time"

	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

var _ interfaces.IEventStore = (*PostgresStore)(nil)

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS trade_events (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT,
			qty DOUBLE PRECISION,
			price DOUBLE PRECISION,
			confidence DOUBLE PRECISION,
			reason TEXT,
			created_at TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create trade_events: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveTradeRecord(rec models.MTradeRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := d.DB.Exec(`
		INSERT INTO trade_events (kind, symbol, side, qty, price, confidence, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.Kind, rec.Symbol, rec.Side, rec.Qty, rec.Price, rec.Confidence, rec.Reason, createdAt)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) RecentTrades(limit int) ([]models.MTradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.DB.Query(`
		SELECT id, kind, symbol, side, qty, price, confidence, reason, created_at
		FROM trade_events
		ORDER BY id DESC
		LIMIT $1
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

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
