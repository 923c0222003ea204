package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pluto-lander/src/helpers"
	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
)

// -----------------------------------------------------------------------------
// AlpacaClient — stateless adapter over the Alpaca trading and market data
// REST APIs. Credentials come from the settings store on every call so a
// settings update takes effect without a restart. One attempt per call:
// duplicate order submission is unsafe without idempotency keys.
// -----------------------------------------------------------------------------

var _ interfaces.IBroker = (*AlpacaClient)(nil)

// SettingsSource supplies the current credentials and paper/live flag.
type SettingsSource interface {
	Current() models.MSettings
}

type AlpacaClient struct {
	Config   *models.MConfig
	Settings SettingsSource
	Logger   *logger.Logger
	Client   *http.Client
}

// -----------------------------------------------------------------------------

func NewAlpacaClient(cfg *models.MConfig, settings SettingsSource, log *logger.Logger) *AlpacaClient {
	return &AlpacaClient{
		Config:   cfg,
		Settings: settings,
		Logger:   log,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Broker.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// IsConfigured reports whether API credentials are currently stored.
func (c *AlpacaClient) IsConfigured() bool {
	s := c.Settings.Current()
	return s.AlpacaAPIKey != "" && s.AlpacaAPISecret != ""
}

// -----------------------------------------------------------------------------

// IsCryptoSymbol applies the broker's symbol taxonomy heuristic: crypto
// pairs end in "USD" and are longer than 4 characters (e.g. "BTCUSD").
// Kept verbatim even though some equity tickers could match; the data API
// routing depends on it.
func IsCryptoSymbol(symbol string) bool {
	return strings.HasSuffix(symbol, "USD") && len(symbol) > 4
}

// -----------------------------------------------------------------------------
// Account / positions / orders (trading API)
// -----------------------------------------------------------------------------

func (c *AlpacaClient) GetAccount(ctx context.Context) (*models.MAccount, error) {
	base, hdr, _, ok := c.endpoints()
	if !ok {
		return nil, nil
	}

	body, err := c.get(ctx, base+"/v2/account", hdr, nil)
	if err != nil {
		c.Logger.Info("Account fetch failed: %v", err)
		return nil, nil
	}

	var account models.MAccount
	if err := json.Unmarshal(body, &account); err != nil {
		c.Logger.Info("Account parse failed: %v", err)
		return nil, nil
	}
	return &account, nil
}

// -----------------------------------------------------------------------------

func (c *AlpacaClient) GetPositions(ctx context.Context) (json.RawMessage, error) {
	base, hdr, _, ok := c.endpoints()
	if !ok {
		return json.RawMessage("[]"), nil
	}

	body, err := c.get(ctx, base+"/v2/positions", hdr, nil)
	if err != nil {
		c.Logger.Info("Positions fetch failed: %v", err)
		return json.RawMessage("[]"), nil
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (c *AlpacaClient) GetOrders(ctx context.Context, status string, limit int) (json.RawMessage, error) {
	base, hdr, _, ok := c.endpoints()
	if !ok {
		return json.RawMessage("[]"), nil
	}

	params := map[string]string{
		"status":    status,
		"limit":     strconv.Itoa(limit),
		"direction": "desc",
	}
	body, err := c.get(ctx, base+"/v2/orders", hdr, params)
	if err != nil {
		c.Logger.Info("Orders fetch failed: %v", err)
		return json.RawMessage("[]"), nil
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (c *AlpacaClient) SubmitOrder(ctx context.Context, req models.MOrderRequest) (json.RawMessage, error) {
	base, hdr, _, ok := c.endpoints()
	if !ok {
		return nil, helpers.NewNotConfigured("Alpaca API")
	}

	payload := map[string]string{
		"symbol":        req.Symbol,
		"qty":           strconv.FormatFloat(req.Qty, 'f', -1, 64),
		"side":          req.Side,
		"type":          req.Type,
		"time_in_force": req.TimeInForce,
	}
	if req.Type == "limit" && req.LimitPrice != nil {
		payload["limit_price"] = strconv.FormatFloat(*req.LimitPrice, 'f', -1, 64)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v2/orders", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	applyHeaders(httpReq, hdr)

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		c.Logger.Info("Order submit failed: %v", err)
		return nil, helpers.NewBrokerRejected(0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, helpers.NewBrokerRejected(resp.StatusCode, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Info("Order submit rejected (%d): %s", resp.StatusCode, string(body))
		return nil, helpers.NewBrokerRejected(resp.StatusCode, string(body))
	}

	return body, nil
}

// -----------------------------------------------------------------------------

func (c *AlpacaClient) CancelOrder(ctx context.Context, orderID string) error {
	base, hdr, _, ok := c.endpoints()
	if !ok {
		return helpers.NewNotConfigured("Alpaca API")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		base+"/v2/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return err
	}
	applyHeaders(httpReq, hdr)

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		c.Logger.Info("Cancel order failed: %v", err)
		return helpers.NewNetwork("cancel order failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Info("Cancel order rejected (%d)", resp.StatusCode)
		return helpers.NewBrokerRejected(resp.StatusCode, "cancel rejected")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Quotes / bars (market data API, crypto vs equity routing)
// -----------------------------------------------------------------------------

func (c *AlpacaClient) GetLatestQuote(ctx context.Context, symbol string) (json.RawMessage, error) {
	_, hdr, dataURL, ok := c.endpoints()
	if !ok {
		return nil, nil
	}

	var body []byte
	var err error
	if IsCryptoSymbol(symbol) {
		body, err = c.get(ctx, dataURL+"/v1beta3/crypto/us/latest/quotes", hdr,
			map[string]string{"symbols": symbol})
	} else {
		body, err = c.get(ctx, dataURL+"/v2/stocks/"+url.PathEscape(symbol)+"/quotes/latest", hdr, nil)
	}
	if err != nil {
		c.Logger.Info("Quote fetch failed for %s: %v", symbol, err)
		return nil, nil
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (c *AlpacaClient) GetBars(ctx context.Context, symbol, timeframe string, limit int) (json.RawMessage, error) {
	_, hdr, dataURL, ok := c.endpoints()
	if !ok {
		return json.RawMessage("[]"), nil
	}

	var body []byte
	var err error
	if IsCryptoSymbol(symbol) {
		body, err = c.get(ctx, dataURL+"/v1beta3/crypto/us/bars", hdr, map[string]string{
			"symbols":   symbol,
			"timeframe": timeframe,
			"limit":     strconv.Itoa(limit),
		})
	} else {
		body, err = c.get(ctx, dataURL+"/v2/stocks/"+url.PathEscape(symbol)+"/bars", hdr, map[string]string{
			"timeframe": timeframe,
			"limit":     strconv.Itoa(limit),
		})
	}
	if err != nil {
		c.Logger.Info("Bars fetch failed for %s: %v", symbol, err)
		return json.RawMessage("[]"), nil
	}
	return body, nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

// endpoints resolves the trading base URL (paper or live), auth headers and
// data URL from the current settings. ok is false when credentials are absent.
func (c *AlpacaClient) endpoints() (base string, headers map[string]string, dataURL string, ok bool) {
	s := c.Settings.Current()
	if s.AlpacaAPIKey == "" || s.AlpacaAPISecret == "" {
		return "", nil, "", false
	}

	base = c.Config.Broker.LiveURL
	if s.AlpacaPaper {
		base = c.Config.Broker.PaperURL
	}

	headers = map[string]string{
		"APCA-API-KEY-ID":     s.AlpacaAPIKey,
		"APCA-API-SECRET-KEY": s.AlpacaAPISecret,
		"Content-Type":        "application/json",
	}
	return base, headers, c.Config.Broker.DataURL, true
}

// -----------------------------------------------------------------------------

// get performs a single authenticated GET. No retries.
func (c *AlpacaClient) get(ctx context.Context, urlStr string, headers, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := reqUrl.Query()
		for k, v := range params {
			q.Add(k, v)
		}
		reqUrl.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, headers)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, helpers.NewNetwork("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}
