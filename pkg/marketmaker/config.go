package marketmaker

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the market maker service
type Config struct {
	// gRPC connection settings
	MatchingoGRPCAddr string
	RequestTimeout    time.Duration

	// Market settings
	MarketSymbol   string // e.g., "BTC-USDT"
	ExternalSymbol string // e.g., "BTCUSDT"
	PriceSourceURL string // e.g., "https://api.binance.com"

	// Market making parameters
	NumLevels         int
	BaseSpreadPercent decimal.Decimal
	PriceStepPercent  decimal.Decimal
	OrderSize         decimal.Decimal
	PriceScale        int32 // decimal places quotes are rounded to
	UpdateInterval    time.Duration

	// HTTP client settings
	HTTPTimeout time.Duration
	MaxRetries  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("MATCHINGO_GRPC_ADDR", "localhost:50051")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 5)
	v.SetDefault("MARKET_SYMBOL", "BTC-USDT")
	v.SetDefault("EXTERNAL_SYMBOL", "BTCUSDT")
	v.SetDefault("PRICE_SOURCE_URL", "https://api.binance.com")
	v.SetDefault("NUM_LEVELS", 3)
	v.SetDefault("BASE_SPREAD_PERCENT", "0.1")
	v.SetDefault("PRICE_STEP_PERCENT", "0.05")
	v.SetDefault("ORDER_SIZE", "0.01")
	v.SetDefault("PRICE_SCALE", 2)
	v.SetDefault("UPDATE_INTERVAL_SECONDS", 10)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 5)
	v.SetDefault("MAX_RETRIES", 3)

	// Allow environment variables
	v.AutomaticEnv()

	spread, err := decimal.NewFromString(v.GetString("BASE_SPREAD_PERCENT"))
	if err != nil {
		return nil, fmt.Errorf("BASE_SPREAD_PERCENT: %w", err)
	}
	step, err := decimal.NewFromString(v.GetString("PRICE_STEP_PERCENT"))
	if err != nil {
		return nil, fmt.Errorf("PRICE_STEP_PERCENT: %w", err)
	}
	size, err := decimal.NewFromString(v.GetString("ORDER_SIZE"))
	if err != nil {
		return nil, fmt.Errorf("ORDER_SIZE: %w", err)
	}

	cfg := &Config{
		MatchingoGRPCAddr: v.GetString("MATCHINGO_GRPC_ADDR"),
		RequestTimeout:    time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		MarketSymbol:      v.GetString("MARKET_SYMBOL"),
		ExternalSymbol:    v.GetString("EXTERNAL_SYMBOL"),
		PriceSourceURL:    v.GetString("PRICE_SOURCE_URL"),
		NumLevels:         v.GetInt("NUM_LEVELS"),
		BaseSpreadPercent: spread,
		PriceStepPercent:  step,
		OrderSize:         size,
		PriceScale:        v.GetInt32("PRICE_SCALE"),
		UpdateInterval:    time.Duration(v.GetInt("UPDATE_INTERVAL_SECONDS")) * time.Second,
		HTTPTimeout:       time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		MaxRetries:        v.GetInt("MAX_RETRIES"),
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.MatchingoGRPCAddr == "" {
		return fmt.Errorf("MATCHINGO_GRPC_ADDR must not be empty")
	}
	if cfg.MarketSymbol == "" {
		return fmt.Errorf("MARKET_SYMBOL must not be empty")
	}
	if cfg.ExternalSymbol == "" {
		return fmt.Errorf("EXTERNAL_SYMBOL must not be empty")
	}
	if cfg.PriceSourceURL == "" {
		return fmt.Errorf("PRICE_SOURCE_URL must not be empty")
	}
	if cfg.NumLevels <= 0 {
		return fmt.Errorf("NUM_LEVELS must be positive")
	}
	if !cfg.BaseSpreadPercent.IsPositive() {
		return fmt.Errorf("BASE_SPREAD_PERCENT must be positive")
	}
	if !cfg.PriceStepPercent.IsPositive() {
		return fmt.Errorf("PRICE_STEP_PERCENT must be positive")
	}
	if !cfg.OrderSize.IsPositive() {
		return fmt.Errorf("ORDER_SIZE must be positive")
	}
	if cfg.PriceScale < 0 {
		return fmt.Errorf("PRICE_SCALE must not be negative")
	}
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL_SECONDS must be positive")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("MAX_RETRIES must be positive")
	}
	return nil
}
