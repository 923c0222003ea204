package storage

import (
	"path/filepath"
	"testing"

	"pluto-lander/src/logger"
	"pluto-lander/src/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.Storage.DBType = "sqlite"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(cfg, logger.NewLogger("test"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndReadTradeRecords(t *testing.T) {
	store := newTestSQLiteStore(t)

	records := []models.MTradeRecord{
		{Kind: "signal", Symbol: "BTCUSD", Side: "buy", Confidence: 0.8, Reason: "momentum"},
		{Kind: "order", Symbol: "AAPL", Side: "sell", Qty: 10, Price: 150.5},
	}
	for _, rec := range records {
		if err := store.SaveTradeRecord(rec); err != nil {
			t.Fatalf("SaveTradeRecord failed: %v", err)
		}
	}

	got, err := store.RecentTrades(10)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	// Newest first
	if got[0].Symbol != "AAPL" || got[0].Kind != "order" {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].Symbol != "BTCUSD" || got[1].Confidence != 0.8 {
		t.Errorf("unexpected second record: %+v", got[1])
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at was not defaulted")
	}
}

func TestRecentTradesHonorsLimit(t *testing.T) {
	store := newTestSQLiteStore(t)

	for i := 0; i < 5; i++ {
		if err := store.SaveTradeRecord(models.MTradeRecord{Kind: "signal", Symbol: "SPY", Side: "buy"}); err != nil {
			t.Fatalf("SaveTradeRecord failed: %v", err)
		}
	}

	got, err := store.RecentTrades(3)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 records, got %d", len(got))
	}
}

func TestRecentTradesEmpty(t *testing.T) {
	store := newTestSQLiteStore(t)

	got, err := store.RecentTrades(10)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
