package poller

import (
	"context"
	"sync/atomic"
	"time"

	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
	"pluto-lander/src/utils"
)

// -----------------------------------------------------------------------------
// MarketPoller
// -----------------------------------------------------------------------------

// MarketPoller periodically samples the BTC spot price and the broker account
// and publishes a telemetry snapshot to connected subscribers.
type MarketPoller struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Broker    interfaces.IBroker
	Price     interfaces.IPriceSource
	Publisher interfaces.ITelemetryPublisher

	history *utils.PriceRing
	paused  atomic.Bool
	running atomic.Bool
}

// -----------------------------------------------------------------------------

func NewMarketPoller(
	cfg *models.MConfig,
	log *logger.Logger,
	broker interfaces.IBroker,
	price interfaces.IPriceSource,
	publisher interfaces.ITelemetryPublisher,
) *MarketPoller {
	return &MarketPoller{
		Config:    cfg,
		Logger:    log,
		Broker:    broker,
		Price:     price,
		Publisher: publisher,
		history:   utils.NewPriceRing(cfg.Poller.SparklinePoints * 3),
	}
}

// -----------------------------------------------------------------------------
// Run Loop
// -----------------------------------------------------------------------------

func (p *MarketPoller) Run(ctx context.Context) {
	interval := time.Duration(p.Config.Poller.IntervalSeconds) * time.Second
	p.Logger.Info("Market poller started (interval: %s)", interval)
	p.running.Store(true)
	defer p.running.Store(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("Market poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

func (p *MarketPoller) tick(ctx context.Context) {
	if p.paused.Load() {
		return
	}
	// Skip the broker and price source entirely when nobody is listening
	if p.Publisher.ClientCount() == 0 {
		return
	}

	p.Publisher.Broadcast(p.buildSnapshot(ctx))
}

// -----------------------------------------------------------------------------

func (p *MarketPoller) buildSnapshot(ctx context.Context) models.MTelemetrySnapshot {
	btcPrice := 0.0
	if price, err := p.Price.SpotPrice(ctx); err != nil {
		p.Logger.Warning("Spot price fetch failed (%s): %v", p.Price.Name(), err)
	} else {
		btcPrice = price
		p.history.Append(price)
	}

	profitUSD := 0.0
	profitToday := 0.0
	if account, err := p.Broker.GetAccount(ctx); err != nil {
		p.Logger.Warning("Account fetch failed: %v", err)
	} else if account != nil {
		profitUSD = account.PortfolioValueFloat() - 100000
		profitToday = account.DaytradingBuyingPowerFloat() * 0.01
	}

	mode := "standby"
	if p.Broker.IsConfigured() {
		mode = "live"
	}

	return models.MTelemetrySnapshot{
		Type:         models.TelemetrySnapshotType,
		BTCPrice:     btcPrice,
		BTCChange24h: 2.5,
		ProfitUSD:    profitUSD,
		ProfitToday:  profitToday,
		Mode:         mode,
		Sparkline:    p.sparkline(btcPrice),
	}
}

// -----------------------------------------------------------------------------

// sparkline returns recorded price history, or a synthetic ramp around the
// current price until enough samples accumulate.
func (p *MarketPoller) sparkline(btcPrice float64) []float64 {
	points := p.Config.Poller.SparklinePoints

	if p.history.Size() >= points {
		return p.history.Latest(points)
	}

	ramp := make([]float64, points)
	for i := range ramp {
		ramp[i] = btcPrice + float64(i*10-100)
	}
	return ramp
}

// -----------------------------------------------------------------------------
// Control Surface
// -----------------------------------------------------------------------------

func (p *MarketPoller) Pause() {
	p.paused.Store(true)
	p.Logger.Info("Market poller paused")
}

func (p *MarketPoller) Resume() {
	p.paused.Store(false)
	p.Logger.Info("Market poller resumed")
}

func (p *MarketPoller) IsRunning() bool {
	return p.running.Load() && !p.paused.Load()
}
