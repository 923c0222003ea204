package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
)

// -----------------------------------------------------------------------------
// CoinbaseSource polls the Coinbase spot price endpoint for the BTC
// reference price shown on the display. Independent of the brokerage.
// -----------------------------------------------------------------------------

var _ interfaces.IPriceSource = (*CoinbaseSource)(nil)

type CoinbaseSource struct {
	URL     string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCoinbaseSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *CoinbaseSource {
	return &CoinbaseSource{
		URL:     cfg.Poller.SpotPriceURL,
		Network: netMgr,
		Logger:  logger.NewLogger("CoinbaseSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *CoinbaseSource) Name() string {
	return "coinbase"
}

// -----------------------------------------------------------------------------

type spotPriceResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Base     string `json:"base"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// SpotPrice fetches the current BTC-USD spot price.
func (s *CoinbaseSource) SpotPrice(_ context.Context) (float64, error) {
	body, err := s.Network.Get(s.URL, nil)
	if err != nil {
		return 0, err
	}

	var parsed spotPriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("spot price parse failed: %w", err)
	}

	price, err := strconv.ParseFloat(parsed.Data.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("spot price amount '%s' not numeric: %w", parsed.Data.Amount, err)
	}
	return price, nil
}
