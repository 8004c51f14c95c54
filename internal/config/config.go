// Package config loads the storefront client configuration from a YAML
// file and STOREFRONT_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var defaultBaseURLs = map[string]string{
	EnvDevelopment: "http://localhost:4000",
	EnvProduction:  "https://hadi-books-store-backend-2.onrender.com",
}

type Config struct {
	Environment string        `yaml:"environment"`
	API         APIConfig     `yaml:"api"`
	Storage     StorageConfig `yaml:"storage"`
	Shop        ShopConfig    `yaml:"shop"`
	Log         LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type StorageConfig struct {
	Driver      string        `yaml:"driver"`
	PostgresDSN string        `yaml:"postgres_dsn"`
	RedisURL    string        `yaml:"redis_url"`
	TTL         time.Duration `yaml:"ttl"`
}

type ShopConfig struct {
	Currency     string `yaml:"currency"`
	TaxRate      string `yaml:"tax_rate"`
	ShippingFee  string `yaml:"shipping_fee"`
	CatalogLimit int    `yaml:"catalog_limit"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads path (optional), applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("STOREFRONT_ENV", &c.Environment)
	str("STOREFRONT_API_URL", &c.API.BaseURL)
	str("STOREFRONT_STORAGE_DRIVER", &c.Storage.Driver)
	str("STOREFRONT_POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("STOREFRONT_REDIS_URL", &c.Storage.RedisURL)
	str("STOREFRONT_CURRENCY", &c.Shop.Currency)
	str("STOREFRONT_LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("STOREFRONT_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}

	if v, ok := lookup("STOREFRONT_API_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_API_MAX_RETRIES: %w", err)
		}
		c.API.MaxRetries = n
	}

	return nil
}

func (c *Config) applyDefaults() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURLs[c.Environment]
	}
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
	if c.API.Timeout == 0 {
		c.API.Timeout = 15 * time.Second
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = 2
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	if c.Shop.Currency == "" {
		c.Shop.Currency = "PKR"
	}
	if c.Shop.TaxRate == "" {
		c.Shop.TaxRate = "0.02"
	}
	if c.Shop.ShippingFee == "" {
		c.Shop.ShippingFee = "99"
	}
	if c.Shop.CatalogLimit == 0 {
		c.Shop.CatalogLimit = 120
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if _, ok := defaultBaseURLs[c.Environment]; !ok {
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout is negative")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries is negative")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is empty")
		}
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is empty")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if _, err := c.Shop.Unit(); err != nil {
		return err
	}
	if _, _, err := c.Shop.Rates(); err != nil {
		return err
	}
	return nil
}

func (s ShopConfig) Unit() (currency.Unit, error) {
	unit, err := currency.ParseISO(s.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", s.Currency, err)
	}
	return unit, nil
}

func (s ShopConfig) Rates() (taxRate, shippingFee decimal.Decimal, err error) {
	taxRate, err = decimal.NewFromString(s.TaxRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("shop.tax_rate: %w", err)
	}
	if taxRate.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("shop.tax_rate is negative")
	}

	shippingFee, err = decimal.NewFromString(s.ShippingFee)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("shop.shipping_fee: %w", err)
	}
	if shippingFee.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("shop.shipping_fee is negative")
	}

	return taxRate, shippingFee, nil
}
