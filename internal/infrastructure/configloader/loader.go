package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ResolutionConfig holds configuration for the resolution service.
type ResolutionConfig struct {
	CacheTTLSeconds       int `yaml:"cacheTTLSeconds"`
	MaxConcurrentRoutines int `yaml:"maxConcurrentRoutines"`
	RPCCallTimeoutSeconds int `yaml:"rpcCallTimeoutSeconds"`
}

// RegistrarConfig holds configuration for write operations.
type RegistrarConfig struct {
	RegisterGasLimit     uint64 `yaml:"registerGasLimit"`
	RenewGasLimit        uint64 `yaml:"renewGasLimit"`
	TransferGasLimit     uint64 `yaml:"transferGasLimit"`
	RecordGasLimit       uint64 `yaml:"recordGasLimit"`
	DefaultDurationYears int    `yaml:"defaultDurationYears"`
}

// ActivityConfig holds configuration for the activity tracker.
type ActivityConfig struct {
	ExportDir string `yaml:"exportDir"`
}

// ExplorerConfig holds block-explorer API configuration.
type ExplorerConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
}

// WatcherConfig holds configuration for the on-chain event watcher.
type WatcherConfig struct {
	PollIntervalSeconds int `yaml:"pollIntervalSeconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Registrar  RegistrarConfig  `yaml:"registrar"`
	Activity   ActivityConfig   `yaml:"activity"`
	Explorer   ExplorerConfig   `yaml:"explorer"`
	Watcher    WatcherConfig    `yaml:"watcher"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Resolution.CacheTTLSeconds <= 0 {
		cfg.Resolution.CacheTTLSeconds = 300 // 5 minutes
	}
	if cfg.Resolution.MaxConcurrentRoutines <= 0 {
		cfg.Resolution.MaxConcurrentRoutines = 10
	}
	if cfg.Resolution.RPCCallTimeoutSeconds <= 0 {
		cfg.Resolution.RPCCallTimeoutSeconds = 10
	}
	if cfg.Registrar.RegisterGasLimit == 0 {
		cfg.Registrar.RegisterGasLimit = 300000
	}
	if cfg.Registrar.RenewGasLimit == 0 {
		cfg.Registrar.RenewGasLimit = 150000
	}
	if cfg.Registrar.TransferGasLimit == 0 {
		cfg.Registrar.TransferGasLimit = 100000
	}
	if cfg.Registrar.RecordGasLimit == 0 {
		cfg.Registrar.RecordGasLimit = 120000
	}
	if cfg.Registrar.DefaultDurationYears <= 0 {
		cfg.Registrar.DefaultDurationYears = 1
	}
	if cfg.Activity.ExportDir == "" {
		cfg.Activity.ExportDir = "ens_activity"
	}
	if cfg.Explorer.BaseURL == "" {
		cfg.Explorer.BaseURL = "https://api.etherscan.io/api"
	}
	if cfg.Explorer.RequestTimeoutMillis == 0 {
		cfg.Explorer.RequestTimeoutMillis = 10000
	}
	if cfg.Explorer.RequestsPerSecond <= 0 {
		cfg.Explorer.RequestsPerSecond = 4 // below the free-tier limit
	}
	if cfg.Watcher.PollIntervalSeconds <= 0 {
		cfg.Watcher.PollIntervalSeconds = 15
	}
}
