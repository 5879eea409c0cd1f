package configloader

import (
	"fmt"
	"os"
	"strings"

	"donation_portal/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string   `yaml:"port"`
	ReadTimeout  int      `yaml:"readTimeout"`
	WriteTimeout int      `yaml:"writeTimeout"`
	IdleTimeout  int      `yaml:"idleTimeout"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// PriceFeedConfig holds the configuration for the CoinGecko price client.
type PriceFeedConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RatePerSecond        float64 `yaml:"ratePerSecond"`
	Burst                int     `yaml:"burst"`
}

// RpcClientConfig holds configuration for RPC clients.
type RpcClientConfig struct {
	DialTimeoutMs    int64   `yaml:"dialTimeoutMs"`
	DefaultTimeoutMs int64   `yaml:"defaultTimeoutMs"`
	RateLimit        float64 `yaml:"rateLimit"`
	BurstLimit       int     `yaml:"burstLimit"`
	MaxBatchSize     int     `yaml:"maxBatchSize"`
}

// DonationConfig holds validation and tracking settings of the donation flow.
type DonationConfig struct {
	// MinUSD is the single minimum donation threshold, in USD.
	MinUSD                string `yaml:"minUSD"`
	ReceiptPollIntervalMs int64  `yaml:"receiptPollIntervalMs"`
	LifecycleTTLMinutes   int    `yaml:"lifecycleTTLMinutes"`
	RequestTimeoutSeconds int    `yaml:"requestTimeoutSeconds"`
}

// SignerConfig selects how transactions are signed.
type SignerConfig struct {
	Mode          string `yaml:"mode"` // "keyed" or "rpc"
	PrivateKeyEnv string `yaml:"privateKeyEnv"`
	// Endpoint is the signer RPC used in "rpc" mode, e.g. a Clef instance.
	Endpoint      string `yaml:"endpoint"`
}

// HandoffConfig selects the storage of confirmation handoffs.
type HandoffConfig struct {
	Store      string `yaml:"store"` // "memory" or "redis"
	TTLMinutes int    `yaml:"ttlMinutes"`
	RedisAddr  string `yaml:"redisAddr"`
	RedisDB    int    `yaml:"redisDB"`
	KeyPrefix  string `yaml:"keyPrefix"`
}

// SessionConfig holds the browser session cookie settings.
type SessionConfig struct {
	CookieName string `yaml:"cookieName"`
	Secret     string `yaml:"secret"`
	MaxAgeSec  int    `yaml:"maxAgeSec"`
	Secure     bool   `yaml:"secure"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig               `yaml:"server"`
	Logging     LoggingConfig              `yaml:"logging"`
	Networks    []entity.NetworkDefinition `yaml:"networks"`
	TokensDir   string                     `yaml:"tokensDir"`
	WalletsFile string                     `yaml:"walletsFile"`
	PriceFeed   PriceFeedConfig            `yaml:"priceFeed"`
	RpcClient   RpcClientConfig            `yaml:"rpcClient"`
	Donation    DonationConfig             `yaml:"donation"`
	Signer      SignerConfig               `yaml:"signer"`
	Handoff     HandoffConfig              `yaml:"handoff"`
	Session     SessionConfig              `yaml:"session"`
	Performance PerformanceConfig          `yaml:"performance"`
}

// DefaultMinUSD is the minimum donation in USD when none is configured.
const DefaultMinUSD = "0.10"

// Load reads the YAML configuration file from the given path, unmarshals it and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.TokensDir == "" {
		cfg.TokensDir = "data/tokens"
		logrus.Infof("TokensDir not set, defaulting to %s", cfg.TokensDir)
	}
	if cfg.WalletsFile == "" {
		cfg.WalletsFile = "data/wallets.txt"
	}

	if cfg.PriceFeed.BaseURL == "" {
		cfg.PriceFeed.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("PriceFeed.BaseURL not set, defaulting to %s", cfg.PriceFeed.BaseURL)
	}
	if cfg.PriceFeed.RequestTimeoutMillis <= 0 {
		cfg.PriceFeed.RequestTimeoutMillis = 10000
		logrus.Infof("PriceFeed.RequestTimeoutMillis not set, defaulting to %d ms", cfg.PriceFeed.RequestTimeoutMillis)
	}
	if cfg.PriceFeed.RatePerSecond <= 0 {
		cfg.PriceFeed.RatePerSecond = 0.5 // public CoinGecko tier allows ~30 calls/min
		logrus.Infof("PriceFeed.RatePerSecond not set, defaulting to %.2f", cfg.PriceFeed.RatePerSecond)
	}
	if cfg.PriceFeed.Burst <= 0 {
		cfg.PriceFeed.Burst = 5
	}

	if cfg.RpcClient.DialTimeoutMs <= 0 {
		cfg.RpcClient.DialTimeoutMs = 10000
	}
	if cfg.RpcClient.DefaultTimeoutMs <= 0 {
		cfg.RpcClient.DefaultTimeoutMs = 10000
		logrus.Infof("RpcClient.DefaultTimeoutMs not set, defaulting to %d ms", cfg.RpcClient.DefaultTimeoutMs)
	}
	if cfg.RpcClient.RateLimit <= 0 {
		cfg.RpcClient.RateLimit = 10
	}
	if cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = 20
	}
	if cfg.RpcClient.MaxBatchSize <= 0 {
		cfg.RpcClient.MaxBatchSize = 100
	}

	if cfg.Donation.MinUSD == "" {
		cfg.Donation.MinUSD = DefaultMinUSD
		logrus.Infof("Donation.MinUSD not set, defaulting to %s", cfg.Donation.MinUSD)
	}
	if cfg.Donation.ReceiptPollIntervalMs <= 0 {
		cfg.Donation.ReceiptPollIntervalMs = 4000
	}
	if cfg.Donation.LifecycleTTLMinutes <= 0 {
		cfg.Donation.LifecycleTTLMinutes = 30
	}
	if cfg.Donation.RequestTimeoutSeconds <= 0 {
		cfg.Donation.RequestTimeoutSeconds = 60
	}

	if cfg.Signer.Mode == "" {
		cfg.Signer.Mode = "rpc"
		logrus.Infof("Signer.Mode not set, defaulting to %s", cfg.Signer.Mode)
	}
	if cfg.Signer.PrivateKeyEnv == "" {
		cfg.Signer.PrivateKeyEnv = "DONATION_SIGNER_KEY"
	}

	if cfg.Handoff.Store == "" {
		cfg.Handoff.Store = "memory"
		logrus.Infof("Handoff.Store not set, defaulting to %s", cfg.Handoff.Store)
	}
	if cfg.Handoff.TTLMinutes <= 0 {
		cfg.Handoff.TTLMinutes = 15
	}
	if cfg.Handoff.KeyPrefix == "" {
		cfg.Handoff.KeyPrefix = "donation:handoff:"
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "donation_session"
	}
	if cfg.Session.MaxAgeSec <= 0 {
		cfg.Session.MaxAgeSec = 86400
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
		logrus.Infof("Performance.MaxConcurrentRoutines not set, defaulting to %d", cfg.Performance.MaxConcurrentRoutines)
	}

	for i := range cfg.Networks {
		cfg.Networks[i].Identifier = strings.ToLower(cfg.Networks[i].Identifier)
	}
}

func validate(cfg *Config) error {
	minUSD, err := decimal.NewFromString(cfg.Donation.MinUSD)
	if err != nil {
		return fmt.Errorf("donation.minUSD %q: %w", cfg.Donation.MinUSD, err)
	}
	if minUSD.IsNegative() {
		return fmt.Errorf("donation.minUSD must not be negative")
	}

	switch cfg.Signer.Mode {
	case "keyed", "rpc":
	default:
		return fmt.Errorf("signer.mode %q is not one of keyed, rpc", cfg.Signer.Mode)
	}
	if cfg.Signer.Mode == "rpc" && cfg.Signer.Endpoint == "" {
		logrus.Warn("Signer.Endpoint not set, rpc signer will use each network's primary RPC")
	}

	switch cfg.Handoff.Store {
	case "memory":
	case "redis":
		if cfg.Handoff.RedisAddr == "" {
			return fmt.Errorf("handoff.redisAddr is required for the redis store")
		}
	default:
		return fmt.Errorf("handoff.store %q is not one of memory, redis", cfg.Handoff.Store)
	}

	for _, n := range cfg.Networks {
		if n.ChainID == 0 {
			return fmt.Errorf("network %q has no chainId", n.Name)
		}
	}
	if cfg.Session.Secret == "" {
		logrus.Warn("Session.Secret not set, a random key will be generated and sessions will not survive restarts")
	}
	return nil
}

// MinUSD returns the parsed minimum donation threshold.
func (c *Config) MinUSD() decimal.Decimal {
	v, err := decimal.NewFromString(c.Donation.MinUSD)
	if err != nil {
		return decimal.RequireFromString(DefaultMinUSD)
	}
	return v
}
