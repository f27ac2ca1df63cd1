package infra

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/timucin/cyrpto-trader/internal/domain"
)

const settingsTemplate = `api:
  key: super_rich_accounts_api_key
  secret: super_secret_top_secret
trading:
  coin: XMR
  currency: BTC
  dust_total: "10"
  dust_amount: "100"
  min_spread: "0.0001"
  max_trading_amount: "1"
`

// Config holds everything the process needs. It is loaded once at
// startup and immutable afterwards; secrets may be overridden through
// environment variables after the file is parsed.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode               string       `yaml:"mode"` // "paper" or "real"
		Coin               string       `yaml:"coin"`
		Currency           string       `yaml:"currency"`
		DustTotal          domain.Money `yaml:"dust_total"`
		DustAmount         domain.Money `yaml:"dust_amount"`
		MinSpread          domain.Money `yaml:"min_spread"`
		MaxTradingAmount   domain.Money `yaml:"max_trading_amount"`
		MinCurrencyBalance domain.Money `yaml:"min_currency_balance"`
		PriceNudge         domain.Money `yaml:"price_nudge"`
		PollIntervalMS     int          `yaml:"poll_interval_ms"`
		BookDepth          int          `yaml:"book_depth"`
	} `yaml:"trading"`

	API struct {
		Key     string `yaml:"key"`
		Secret  string `yaml:"secret"`
		RestURL string `yaml:"rest_url"`
		PushURL string `yaml:"push_url"`
	} `yaml:"api"`

	Paper struct {
		CoinBalance     domain.Money `yaml:"coin_balance"`
		CurrencyBalance domain.Money `yaml:"currency_balance"`
	} `yaml:"paper"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates the settings file. A missing file is a
// configuration error; the message carries a template so the operator
// knows what to create.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("settings not found at %s; create it like this:\n%s", path, settingsTemplate)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "cyrpto-trader"
	}
	if c.Trading.Mode == "" {
		c.Trading.Mode = "paper"
	}
	if c.Trading.PollIntervalMS <= 0 {
		c.Trading.PollIntervalMS = 800
	}
	if c.Trading.BookDepth <= 0 {
		c.Trading.BookDepth = 200
	}
	if c.Trading.MinCurrencyBalance.IsZero() {
		c.Trading.MinCurrencyBalance = domain.MustMoney("0.001")
	}
	if c.Trading.PriceNudge.IsZero() {
		c.Trading.PriceNudge = domain.MustMoney("0.00000003")
	}
	if c.API.RestURL == "" {
		c.API.RestURL = "https://poloniex.com"
	}
	if c.API.PushURL == "" {
		c.API.PushURL = "wss://api2.poloniex.com"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// overrideWithEnv lets credentials come from the environment instead of
// the settings file, which keeps secrets out of files under version
// control.
func (c *Config) overrideWithEnv() {
	if key := os.Getenv("SCALPER_API_KEY"); key != "" {
		c.API.Key = key
	}
	if secret := os.Getenv("SCALPER_API_SECRET"); secret != "" {
		c.API.Secret = secret
	}
}

// Validate fails fast on anything the trading loop cannot run with.
func (c *Config) Validate() error {
	if c.Trading.Coin == "" || c.Trading.Currency == "" {
		return fmt.Errorf("trading.coin and trading.currency are required")
	}
	if c.Trading.Coin == c.Trading.Currency {
		return fmt.Errorf("trading.coin and trading.currency must differ")
	}
	if !c.Trading.DustAmount.IsPositive() || !c.Trading.DustTotal.IsPositive() {
		return fmt.Errorf("trading.dust_amount and trading.dust_total must be positive")
	}
	if !c.Trading.MaxTradingAmount.IsPositive() {
		return fmt.Errorf("trading.max_trading_amount must be positive")
	}
	switch c.Trading.Mode {
	case "paper":
	case "real":
		if c.API.Key == "" || c.API.Secret == "" {
			return fmt.Errorf("api key and secret are required in real mode (or set SCALPER_API_KEY / SCALPER_API_SECRET)")
		}
	default:
		return fmt.Errorf("unknown trading.mode %q (want paper or real)", c.Trading.Mode)
	}
	return nil
}

// Pair returns the exchange pair string, quote first: "BTC_XMR" trades
// XMR against BTC.
func (c *Config) Pair() string {
	return c.Trading.Currency + "_" + c.Trading.Coin
}

// PollInterval is the delay between trading cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Trading.PollIntervalMS) * time.Millisecond
}
