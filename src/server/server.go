package server

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"pluto-lander/src/auth"
	"pluto-lander/src/helpers"
	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
	"pluto-lander/src/settings"
	"pluto-lander/src/utils"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "3.0.0"

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

var _ interfaces.ITelemetryPublisher = (*APIServer)(nil)

// PollerControl is the runtime control surface of the recurring telemetry
// source, attached before Start.
type PollerControl interface {
	Pause()
	Resume()
	IsRunning() bool
}

type APIServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Settings *settings.Store
	Secrets  settings.AppSecrets
	Broker   interfaces.IBroker
	Store    interfaces.IEventStore
	Relay    *SignalRelay
	Calendar *utils.TradingCalendar
	Poller   PollerControl

	engine *gin.Engine

	// WebSocket subscriber registry, owned by the hub goroutine
	clients     map[*Client]struct{}
	broadcast   chan interface{}
	register    chan *Client
	unregister  chan *Client
	pong        chan *Client
	done        chan struct{}
	stopOnce    sync.Once
	clientCount atomic.Int64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(
	cfg *models.MConfig,
	log *logger.Logger,
	settingsStore *settings.Store,
	secrets settings.AppSecrets,
	broker interfaces.IBroker,
	eventStore interfaces.IEventStore,
	notif interfaces.INotifier,
) *APIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:   cfg,
		Logger:   log,
		Settings: settingsStore,
		Secrets:  secrets,
		Broker:   broker,
		Store:    eventStore,
		Calendar: utils.NewTradingCalendar(),
		engine:   gin.Default(),
		clients:  make(map[*Client]struct{}),
		// Buffered queue so producers rarely block on the hub
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		pong:       make(chan *Client, 64),
		done:       make(chan struct{}),
	}

	s.Relay = NewSignalRelay(broker, s, notif, eventStore, settingsStore)

	s.engine.Use(corsMiddleware())
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// AttachPoller wires the poller control surface; call before Start.
func (s *APIServer) AttachPoller(p PollerControl) {
	s.Poller = p
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------

const authUserKey = "authUser"

// authRequired validates the bearer token against the stored admin user.
func (s *APIServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) < 8 || header[:7] != "Bearer " {
			c.AbortWithStatusJSON(401, gin.H{"detail": "Not authenticated"})
			return
		}

		username, err := auth.ParseToken(header[7:], s.Secrets.SecretKey)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"detail": "Invalid token"})
			return
		}
		if username != s.Settings.User().Username {
			c.AbortWithStatusJSON(401, gin.H{"detail": "User not found"})
			return
		}

		c.Set(authUserKey, username)
		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	authed := s.authRequired()

	// Auth
	s.engine.POST("/api/auth/login", s.login)
	s.engine.GET("/api/auth/me", authed, s.me)

	// Settings
	s.engine.GET("/api/settings", authed, s.getSettings)
	s.engine.PUT("/api/settings", authed, s.updateSettings)

	// Alpaca passthrough
	s.engine.GET("/api/alpaca/account", authed, s.getAccount)
	s.engine.GET("/api/alpaca/positions", authed, s.getPositions)
	s.engine.GET("/api/alpaca/orders", authed, s.getOrders)
	s.engine.POST("/api/alpaca/order", authed, s.submitOrder)
	s.engine.DELETE("/api/alpaca/order/:id", authed, s.cancelOrder)
	s.engine.GET("/api/alpaca/quote/:symbol", authed, s.getQuote)
	s.engine.GET("/api/alpaca/bars/:symbol", authed, s.getBars)

	// Trade signals and history
	s.engine.POST("/api/trade-signal", authed, s.tradeSignal)
	s.engine.GET("/api/trades", authed, s.getTrades)

	// System
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/system/status", authed, s.systemStatus)
	s.engine.POST("/api/system/poller/pause", authed, s.pausePoller)
	s.engine.POST("/api/system/poller/resume", authed, s.resumePoller)

	// WebSocket telemetry
	s.engine.GET("/ws/telemetry", s.handleTelemetryWS)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop signals the hub goroutine to exit. The hub's channels stay open so
// in-flight producers (poller ticks, websocket upgrades) never hit a closed
// channel; they bail out on the done signal instead.
func (s *APIServer) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// -----------------------------------------------------------------------------
// Auth Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user := s.Settings.User()
	if username != user.Username || !auth.VerifyPassword(password, user.PasswordHash) {
		c.JSON(401, gin.H{"detail": "Incorrect username or password"})
		return
	}

	token, err := auth.CreateAccessToken(user.Username, s.Secrets.SecretKey)
	if err != nil {
		c.JSON(500, gin.H{"detail": "Failed to issue token"})
		return
	}

	c.JSON(200, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         gin.H{"username": user.Username},
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) me(c *gin.Context) {
	c.JSON(200, gin.H{"username": c.GetString(authUserKey)})
}

// -----------------------------------------------------------------------------
// Settings Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getSettings(c *gin.Context) {
	c.JSON(200, s.Settings.Current())
}

// -----------------------------------------------------------------------------

func (s *APIServer) updateSettings(c *gin.Context) {
	var update models.MSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(400, gin.H{"detail": err.Error()})
		return
	}

	updated, err := s.Settings.Update(update)
	if err != nil {
		c.JSON(500, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(200, updated)
}

// -----------------------------------------------------------------------------
// Alpaca Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getAccount(c *gin.Context) {
	account, _ := s.Broker.GetAccount(c.Request.Context())
	if account == nil {
		c.JSON(503, gin.H{"detail": "Alpaca not connected or not configured"})
		return
	}
	c.JSON(200, account)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPositions(c *gin.Context) {
	positions, _ := s.Broker.GetPositions(c.Request.Context())
	writeRawJSON(c, positions, "[]")
}

// -----------------------------------------------------------------------------

func (s *APIServer) getOrders(c *gin.Context) {
	status := c.DefaultQuery("status", "all")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	orders, _ := s.Broker.GetOrders(c.Request.Context(), status, limit)
	writeRawJSON(c, orders, "[]")
}

// -----------------------------------------------------------------------------

func (s *APIServer) submitOrder(c *gin.Context) {
	var req models.MOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"detail": err.Error()})
		return
	}

	result, err := s.Relay.RelayOrder(c.Request.Context(), req)
	if err != nil {
		c.JSON(400, gin.H{"detail": err.Error()})
		return
	}
	writeRawJSON(c, result, "{}")
}

// -----------------------------------------------------------------------------

func (s *APIServer) cancelOrder(c *gin.Context) {
	orderID := c.Param("id")
	if !s.Relay.RelayCancel(c.Request.Context(), orderID) {
		c.JSON(400, gin.H{"detail": "Failed to cancel order"})
		return
	}
	c.JSON(200, gin.H{"status": "cancelled", "order_id": orderID})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getQuote(c *gin.Context) {
	quote, _ := s.Broker.GetLatestQuote(c.Request.Context(), c.Param("symbol"))
	if quote == nil {
		c.JSON(404, gin.H{"detail": "Quote not available"})
		return
	}
	writeRawJSON(c, quote, "{}")
}

// -----------------------------------------------------------------------------

func (s *APIServer) getBars(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "1Day")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	bars, _ := s.Broker.GetBars(c.Request.Context(), c.Param("symbol"), timeframe, limit)
	writeRawJSON(c, bars, "[]")
}

// -----------------------------------------------------------------------------
// Trade Signal Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) tradeSignal(c *gin.Context) {
	var sig models.MTradeSignal
	if err := c.ShouldBindJSON(&sig); err != nil {
		c.JSON(400, gin.H{"detail": err.Error()})
		return
	}

	if err := s.Relay.IngestSignal(sig); err != nil {
		if helpers.IsValidation(err) {
			c.JSON(400, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(500, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getTrades(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	trades, err := s.Store.RecentTrades(limit)
	if err != nil {
		c.JSON(500, gin.H{"detail": err.Error()})
		return
	}
	if trades == nil {
		trades = []models.MTradeRecord{}
	}
	c.JSON(200, trades)
}

// -----------------------------------------------------------------------------
// System Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":            "healthy",
		"service":           s.Config.Name,
		"version":           serviceVersion,
		"websocket_clients": s.ClientCount(),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) systemStatus(c *gin.Context) {
	userSettings := s.Settings.Current()
	account, _ := s.Broker.GetAccount(c.Request.Context())

	var accountStatus interface{}
	if account != nil {
		accountStatus = account.Status
	}

	c.JSON(200, gin.H{
		"backend":           "online",
		"alpaca_connected":  account != nil,
		"alpaca_paper":      userSettings.AlpacaPaper,
		"websocket_clients": s.ClientCount(),
		"account_status":    accountStatus,
		"market_open":       s.Calendar.IsOpenOnMinute(time.Now()),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) pausePoller(c *gin.Context) {
	if s.Poller == nil {
		c.JSON(503, gin.H{"detail": "Poller not attached"})
		return
	}
	s.Poller.Pause()
	c.JSON(200, gin.H{"status": "paused"})
}

// -----------------------------------------------------------------------------

func (s *APIServer) resumePoller(c *gin.Context) {
	if s.Poller == nil {
		c.JSON(503, gin.H{"detail": "Poller not attached"})
		return
	}
	s.Poller.Resume()
	c.JSON(200, gin.H{"status": "running"})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// writeRawJSON passes a broker payload through verbatim, substituting a
// fallback literal when the payload is absent.
func writeRawJSON(c *gin.Context, payload []byte, fallback string) {
	if len(payload) == 0 {
		payload = []byte(fallback)
	}
	c.Data(200, "application/json", payload)
}
