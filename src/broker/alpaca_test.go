package broker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pluto-lander/src/helpers"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
)

type fakeSettings struct {
	settings models.MSettings
}

func (f *fakeSettings) Current() models.MSettings {
	return f.settings
}

func configuredSettings() *fakeSettings {
	return &fakeSettings{settings: models.MSettings{
		AlpacaAPIKey:    "PKTEST",
		AlpacaAPISecret: "SECRET",
		AlpacaPaper:     true,
	}}
}

// testClient points every Alpaca endpoint at the same test server.
func testClient(baseURL string, settings SettingsSource) *AlpacaClient {
	cfg := &models.MConfig{}
	cfg.Broker.LiveURL = baseURL
	cfg.Broker.PaperURL = baseURL
	cfg.Broker.DataURL = baseURL
	cfg.Broker.RequestTimeout = 5
	return NewAlpacaClient(cfg, settings, logger.NewLogger("test"))
}

func TestIsCryptoSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		want   bool
	}{
		{"BTCUSD", true},
		{"ETHUSD", true},
		{"AAPL", false},
		{"USD", false},
		{"XUSD", false}, // exactly 4 chars, below the length cutoff
		{"SPY", false},
	}
	for _, c := range cases {
		if got := IsCryptoSymbol(c.symbol); got != c.want {
			t.Errorf("IsCryptoSymbol(%q) = %v, want %v", c.symbol, got, c.want)
		}
	}
}

func TestGetLatestQuoteRoutesCrypto(t *testing.T) {
	var gotPath, gotSymbols string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSymbols = r.URL.Query().Get("symbols")
		w.Write([]byte(`{"quotes":{}}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, configuredSettings())
	if _, err := client.GetLatestQuote(context.Background(), "BTCUSD"); err != nil {
		t.Fatalf("GetLatestQuote failed: %v", err)
	}

	if gotPath != "/v1beta3/crypto/us/latest/quotes" {
		t.Errorf("crypto quote hit %q", gotPath)
	}
	if gotSymbols != "BTCUSD" {
		t.Errorf("expected symbols=BTCUSD, got %q", gotSymbols)
	}
}

func TestGetLatestQuoteRoutesEquity(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"quote":{}}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, configuredSettings())
	if _, err := client.GetLatestQuote(context.Background(), "AAPL"); err != nil {
		t.Fatalf("GetLatestQuote failed: %v", err)
	}

	if gotPath != "/v2/stocks/AAPL/quotes/latest" {
		t.Errorf("equity quote hit %q", gotPath)
	}
}

func TestGetBarsRoutesCrypto(t *testing.T) {
	var gotPath, gotTimeframe string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTimeframe = r.URL.Query().Get("timeframe")
		w.Write([]byte(`{"bars":{}}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, configuredSettings())
	if _, err := client.GetBars(context.Background(), "ETHUSD", "1Hour", 50); err != nil {
		t.Fatalf("GetBars failed: %v", err)
	}

	if gotPath != "/v1beta3/crypto/us/bars" {
		t.Errorf("crypto bars hit %q", gotPath)
	}
	if gotTimeframe != "1Hour" {
		t.Errorf("expected timeframe=1Hour, got %q", gotTimeframe)
	}
}

func TestRequestsCarryAuthHeaders(t *testing.T) {
	var gotKey, gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("APCA-API-KEY-ID")
		gotSecret = r.Header.Get("APCA-API-SECRET-KEY")
		w.Write([]byte(`{"id":"acct"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, configuredSettings())
	if _, err := client.GetAccount(context.Background()); err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}

	if gotKey != "PKTEST" || gotSecret != "SECRET" {
		t.Errorf("auth headers missing: key=%q secret=%q", gotKey, gotSecret)
	}
}

func TestReadsDegradeWhenNotConfigured(t *testing.T) {
	client := testClient("http://unused", &fakeSettings{})

	account, err := client.GetAccount(context.Background())
	if err != nil || account != nil {
		t.Errorf("expected nil account and nil error, got %v, %v", account, err)
	}

	positions, err := client.GetPositions(context.Background())
	if err != nil || string(positions) != "[]" {
		t.Errorf("expected empty positions, got %s, %v", positions, err)
	}

	orders, err := client.GetOrders(context.Background(), "all", 50)
	if err != nil || string(orders) != "[]" {
		t.Errorf("expected empty orders, got %s, %v", orders, err)
	}

	quote, err := client.GetLatestQuote(context.Background(), "AAPL")
	if err != nil || quote != nil {
		t.Errorf("expected nil quote, got %s, %v", quote, err)
	}
}

func TestWritesFailWhenNotConfigured(t *testing.T) {
	client := testClient("http://unused", &fakeSettings{})

	_, err := client.SubmitOrder(context.Background(), models.MOrderRequest{
		Symbol: "AAPL", Qty: 1, Side: "buy", Type: "market", TimeInForce: "day",
	})
	if !helpers.IsNotConfigured(err) {
		t.Errorf("expected NotConfigured from SubmitOrder, got %v", err)
	}

	if err := client.CancelOrder(context.Background(), "abc"); !helpers.IsNotConfigured(err) {
		t.Errorf("expected NotConfigured from CancelOrder, got %v", err)
	}
}

func TestSubmitOrderRejectionCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		w.Write([]byte(`{"message":"insufficient buying power"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, configuredSettings())
	_, err := client.SubmitOrder(context.Background(), models.MOrderRequest{
		Symbol: "AAPL", Qty: 1, Side: "buy", Type: "market", TimeInForce: "day",
	})

	var rejected *helpers.BrokerRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected BrokerRejectedError, got %v", err)
	}
	if rejected.StatusCode != 403 {
		t.Errorf("expected status 403, got %d", rejected.StatusCode)
	}
	if rejected.Body != `{"message":"insufficient buying power"}` {
		t.Errorf("broker body not preserved: %q", rejected.Body)
	}
}

func TestSubmitOrderSendsLimitPrice(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"id":"order-1"}`))
	}))
	defer srv.Close()

	limit := 123.45
	client := testClient(srv.URL, configuredSettings())
	result, err := client.SubmitOrder(context.Background(), models.MOrderRequest{
		Symbol: "AAPL", Qty: 2, Side: "buy", Type: "limit", TimeInForce: "day", LimitPrice: &limit,
	})
	if err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}
	if string(result) != `{"id":"order-1"}` {
		t.Errorf("broker response not passed through: %s", result)
	}

	body := string(gotBody)
	for _, want := range []string{`"limit_price":"123.45"`, `"qty":"2"`, `"side":"buy"`} {
		if !strings.Contains(body, want) {
			t.Errorf("order payload missing %s: %s", want, body)
		}
	}
}
