package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"pluto-lander/src/auth"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
	"pluto-lander/src/settings"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Test harness
// -----------------------------------------------------------------------------

func newTestServer(t *testing.T, broker *fakeBroker) *APIServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger("test")
	store, err := settings.NewStore(t.TempDir(), log, auth.HashPassword)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.EnsureDefaultUser(); err != nil {
		t.Fatalf("EnsureDefaultUser failed: %v", err)
	}

	cfg := &models.MConfig{Name: "pluto-lander", Host: "127.0.0.1", Port: 8000}
	secrets := settings.AppSecrets{SecretKey: "test-secret"}

	return NewAPIServer(cfg, log, store, secrets, broker, &memoryEventStore{}, &capturingNotifier{})
}

func doRequest(s *APIServer, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, s *APIServer) string {
	t.Helper()

	form := url.Values{"username": {"admin"}, "password": {"pluto123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login response parse failed: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected login response: %s", w.Body.String())
	}
	return resp.AccessToken
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"admin"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})

	paths := []string{
		"/api/settings",
		"/api/alpaca/account",
		"/api/alpaca/positions",
		"/api/trades",
		"/api/system/status",
	}
	for _, path := range paths {
		if w := doRequest(s, http.MethodGet, path, "", nil); w.Code != 401 {
			t.Errorf("%s: expected 401 without token, got %d", path, w.Code)
		}
		if w := doRequest(s, http.MethodGet, path, "garbage", nil); w.Code != 401 {
			t.Errorf("%s: expected 401 with bad token, got %d", path, w.Code)
		}
	}
}

// -----------------------------------------------------------------------------
// Alpaca endpoints
// -----------------------------------------------------------------------------

func TestAccountUnavailableReturns503(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodGet, "/api/alpaca/account", token, nil)
	if w.Code != 503 {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not connected") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestPositionsDegradeToEmptyList(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodGet, "/api/alpaca/positions", token, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}

func TestQuoteUnavailableReturns404(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodGet, "/api/alpaca/quote/AAPL", token, nil)
	if w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSubmitOrderValidationReturns400(t *testing.T) {
	broker := &fakeBroker{configured: true}
	s := newTestServer(t, broker)
	token := loginToken(t, s)

	w := doRequest(s, http.MethodPost, "/api/alpaca/order", token, models.MOrderRequest{
		Symbol: "AAPL", Qty: 0, Side: "buy",
	})
	if w.Code != 400 {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(broker.submitted) != 0 {
		t.Error("invalid order reached the broker")
	}
}

func TestSubmitOrderPassesThroughBrokerResponse(t *testing.T) {
	broker := &fakeBroker{configured: true, submitResult: json.RawMessage(`{"id":"order-1"}`)}
	s := newTestServer(t, broker)
	token := loginToken(t, s)

	w := doRequest(s, http.MethodPost, "/api/alpaca/order", token, models.MOrderRequest{
		Symbol: "AAPL", Qty: 1, Side: "buy",
	})
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":"order-1"}` {
		t.Errorf("broker response not passed through: %s", w.Body.String())
	}
}

func TestCancelOrder(t *testing.T) {
	broker := &fakeBroker{configured: true}
	s := newTestServer(t, broker)
	token := loginToken(t, s)

	w := doRequest(s, http.MethodDelete, "/api/alpaca/order/order-1", token, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"cancelled"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

// -----------------------------------------------------------------------------
// Trade signal + history
// -----------------------------------------------------------------------------

func TestTradeSignalEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodPost, "/api/trade-signal", token, models.MTradeSignal{
		Symbol: "BTCUSD", Side: "buy",
	})
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	// Rejected signal
	w = doRequest(s, http.MethodPost, "/api/trade-signal", token, models.MTradeSignal{
		Symbol: "BTCUSD", Side: "hold",
	})
	if w.Code != 400 {
		t.Errorf("expected 400 for bad side, got %d", w.Code)
	}
}

func TestTradesEndpointReturnsEmptyArray(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodGet, "/api/trades", token, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected JSON array, got %s", w.Body.String())
	}
}

// -----------------------------------------------------------------------------
// System endpoints
// -----------------------------------------------------------------------------

func TestHealthEndpointIsOpen(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})

	w := doRequest(s, http.MethodGet, "/api/health", "", nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("health parse failed: %v", err)
	}
	if resp["status"] != "healthy" || resp["service"] != "pluto-lander" {
		t.Errorf("unexpected health payload: %v", resp)
	}
}

func TestPollerControlWithoutPoller(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	token := loginToken(t, s)

	w := doRequest(s, http.MethodPost, "/api/system/poller/pause", token, nil)
	if w.Code != 503 {
		t.Errorf("expected 503 without attached poller, got %d", w.Code)
	}
}

type fakePoller struct {
	paused bool
}

func (f *fakePoller) Pause()          { f.paused = true }
func (f *fakePoller) Resume()         { f.paused = false }
func (f *fakePoller) IsRunning() bool { return !f.paused }

func TestPollerControlPauseResume(t *testing.T) {
	s := newTestServer(t, &fakeBroker{})
	poller := &fakePoller{}
	s.AttachPoller(poller)
	token := loginToken(t, s)

	w := doRequest(s, http.MethodPost, "/api/system/poller/pause", token, nil)
	if w.Code != 200 || !poller.paused {
		t.Errorf("pause failed: %d paused=%v", w.Code, poller.paused)
	}

	w = doRequest(s, http.MethodPost, "/api/system/poller/resume", token, nil)
	if w.Code != 200 || poller.paused {
		t.Errorf("resume failed: %d paused=%v", w.Code, poller.paused)
	}
}
