package config

import (
	"fmt"
	"os"

	"pluto-lander/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills in values the YAML omitted.
func (c *Config) applyDefaults() {
	if c.Broker.LiveURL == "" {
		c.Broker.LiveURL = "https://api.alpaca.markets"
	}
	if c.Broker.PaperURL == "" {
		c.Broker.PaperURL = "https://paper-api.alpaca.markets"
	}
	if c.Broker.DataURL == "" {
		c.Broker.DataURL = "https://data.alpaca.markets"
	}
	if c.Broker.RequestTimeout <= 0 {
		c.Broker.RequestTimeout = 10
	}
	if c.Poller.IntervalSeconds <= 0 {
		c.Poller.IntervalSeconds = 5
	}
	if c.Poller.SpotPriceURL == "" {
		c.Poller.SpotPriceURL = "https://api.coinbase.com/v2/prices/BTC-USD/spot"
	}
	if c.Poller.SparklinePoints <= 0 {
		c.Poller.SparklinePoints = 20
	}
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = 5
	}
	if c.ConfigDir == "" {
		c.ConfigDir = "config"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
