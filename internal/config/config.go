package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fin-advisor-go/internal/models"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// UseMock is the raw USE_MOCK_DATA value. Only "false" selects live mode.
	UseMock    string     `mapstructure:"use_mock"`
	MarketData MarketData `mapstructure:"market_data"`
	Brokerage  Brokerage  `mapstructure:"brokerage"`
	Backend    Backend    `mapstructure:"backend"`
	Advisory   Advisory   `mapstructure:"advisory"`
	Simulation Simulation `mapstructure:"simulation"`
	Logger     Logger     `mapstructure:"logger"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
}

// MarketData holds the configuration for the live market data provider.
type MarketData struct {
	BaseURL        string               `mapstructure:"base_url"`
	APIKey         string               `mapstructure:"api_key"`
	RateLimit      float64              `mapstructure:"rate_limit"`
	RateLimitBurst int                  `mapstructure:"rate_limit_burst"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CatalogLimit   int                  `mapstructure:"catalog_limit"`
	CatalogTTL     time.Duration        `mapstructure:"catalog_ttl"`
	HistoryLimit   int                  `mapstructure:"history_limit"`
	YieldLadder    []models.YieldTicker `mapstructure:"yield_ladder"`
}

// Brokerage holds the configuration for the live brokerage API.
type Brokerage struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	SecretKey      string        `mapstructure:"secret_key"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Backend is the cash operations service.
type Backend struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Advisory is the external AI flow endpoint.
type Advisory struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Simulation tunes the mock data source.
type Simulation struct {
	Latency time.Duration `mapstructure:"latency"`
	// Seed of 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port       int    `mapstructure:"port"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultYieldLadder maps each maturity to a distinct constant-maturity ticker.
var DefaultYieldLadder = []models.YieldTicker{
	{Maturity: models.Maturity1M, Ticker: "US1M"},
	{Maturity: models.Maturity3M, Ticker: "^IRX"},
	{Maturity: models.Maturity6M, Ticker: "US6M"},
	{Maturity: models.Maturity1Y, Ticker: "US1Y"},
	{Maturity: models.Maturity2Y, Ticker: "US2Y"},
	{Maturity: models.Maturity5Y, Ticker: "^FVX"},
	{Maturity: models.Maturity10Y, Ticker: "^TNX"},
	{Maturity: models.Maturity30Y, Ticker: "^TYX"},
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err = v.BindEnv("use_mock", "USE_MOCK_DATA"); err != nil {
		return
	}

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("failed to read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}

	config.MarketData.YieldLadder, err = NormalizeLadder(config.MarketData.YieldLadder)
	return
}

func setDefaults(v *viper.Viper) {
	// Keys need a default to be picked up from the environment on Unmarshal.
	v.SetDefault("market_data.base_url", "https://api.polygon.io")
	v.SetDefault("market_data.api_key", "")
	v.SetDefault("market_data.rate_limit", 5) // requests per second
	v.SetDefault("market_data.rate_limit_burst", 5)
	v.SetDefault("market_data.timeout", 10*time.Second)
	v.SetDefault("market_data.catalog_limit", 250)
	v.SetDefault("market_data.catalog_ttl", 15*time.Minute)
	v.SetDefault("market_data.history_limit", 5000)

	v.SetDefault("brokerage.base_url", "https://paper-api.alpaca.markets")
	v.SetDefault("brokerage.api_key", "")
	v.SetDefault("brokerage.secret_key", "")
	v.SetDefault("brokerage.rate_limit", 3)
	v.SetDefault("brokerage.rate_limit_burst", 3)
	v.SetDefault("brokerage.timeout", 10*time.Second)

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("advisory.base_url", "")
	v.SetDefault("advisory.token", "")
	v.SetDefault("advisory.timeout", 60*time.Second)

	v.SetDefault("simulation.latency", 150*time.Millisecond)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("database.dsn", "advisor.db")
}

// NormalizeLadder validates maturities, trims tickers and collapses duplicate
// maturities to their first mapping. An empty ladder becomes DefaultYieldLadder.
func NormalizeLadder(in []models.YieldTicker) ([]models.YieldTicker, error) {
	if len(in) == 0 {
		out := make([]models.YieldTicker, len(DefaultYieldLadder))
		copy(out, DefaultYieldLadder)
		return out, nil
	}

	seen := make(map[models.Maturity]struct{}, len(in))
	out := make([]models.YieldTicker, 0, len(in))
	for _, yt := range in {
		m, ok := models.ParseMaturity(string(yt.Maturity))
		if !ok {
			return nil, fmt.Errorf("unknown yield ladder maturity %q", yt.Maturity)
		}
		ticker := models.NormalizeTicker(yt.Ticker)
		if ticker == "" {
			return nil, fmt.Errorf("yield ladder maturity %s has no ticker", m)
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, models.YieldTicker{Maturity: m, Ticker: ticker})
	}
	return out, nil
}
