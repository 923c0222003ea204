package models

// MConfig Structure
type MConfig struct {
	Name      string         `yaml:"name"`
	Host      string         `yaml:"host"`
	Port      int            `yaml:"port"`
	LogLevel  string         `yaml:"log_level"`
	ConfigDir string         `yaml:"config_dir"`
	Storage   MStorageConfig `yaml:"storage"`
	Network   MNetworkConfig `yaml:"network"`
	Broker    MBrokerConfig  `yaml:"broker"`
	Poller    MPollerConfig  `yaml:"poller"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MBrokerConfig struct {
	LiveURL        string `yaml:"live_url"`
	PaperURL       string `yaml:"paper_url"`
	DataURL        string `yaml:"data_url"`
	RequestTimeout int    `yaml:"timeout"`
}

type MPollerConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	SpotPriceURL    string `yaml:"spot_price_url"`
	SparklinePoints int    `yaml:"sparkline_points"`
}
