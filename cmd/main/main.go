package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"pluto-lander/src/auth"
	"pluto-lander/src/broker"
	"pluto-lander/src/config"
	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/network"
	"pluto-lander/src/notifier"
	"pluto-lander/src/poller"
	"pluto-lander/src/pricesource"
	"pluto-lander/src/server"
	"pluto-lander/src/settings"
	"pluto-lander/src/storage"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "Path to configuration file")
	flag.Parse()

	// Local secrets file, absent in production
	_ = godotenv.Load()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Name)
	log.Info("Starting %s", cfg.Name)

	// Event store
	var eventStore interfaces.IEventStore
	switch cfg.Storage.DBType {
	case "postgres":
		eventStore, err = storage.NewPostgresStore(cfg.MConfig, log)
	default:
		eventStore, err = storage.NewSQLiteStore(cfg.MConfig, log)
	}
	if err != nil {
		log.Critical("Failed to create event store: %v", err)
	}
	if err := eventStore.Initialize(); err != nil {
		log.Critical("Failed to initialize event store: %v", err)
	}
	defer eventStore.Close()

	// Settings and credentials
	secrets := settings.SecretsFromEnv()
	settingsStore, err := settings.NewStore(cfg.ConfigDir, log, auth.HashPassword)
	if err != nil {
		log.Critical("Failed to open settings store: %v", err)
	}
	if err := settingsStore.EnsureDefaultUser(); err != nil {
		log.Critical("Failed to ensure default user: %v", err)
	}

	// Broker and market data
	alpaca := broker.NewAlpacaClient(cfg.MConfig, settingsStore, log)
	netManager := network.NewNetworkManager(cfg.MConfig, log)
	coinbase := pricesource.NewCoinbaseSource(cfg.MConfig, netManager)
	notif := notifier.NewNotifier(secrets)

	// HTTP + WebSocket server
	apiServer := server.NewAPIServer(cfg.MConfig, log, settingsStore, secrets, alpaca, eventStore, notif)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marketPoller := poller.NewMarketPoller(cfg.MConfig, log, alpaca, coinbase, apiServer)
	apiServer.AttachPoller(marketPoller)
	go marketPoller.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal %s, shutting down", sig)
	case err := <-errCh:
		log.Error("Server stopped: %v", err)
	}

	cancel()
	if err := apiServer.Stop(); err != nil {
		log.Error("Shutdown error: %v", err)
	}
	log.Info("Shutdown complete")
}
