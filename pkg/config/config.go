package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Feed formats published by the ECB.
const (
	FeedFormatXML = "xml"
	FeedFormatZip = "zip"
)

// DefaultFeedURL is the daily reference rates document.
const DefaultFeedURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// DefaultRatesTable is the rate table created by the embedded migrations.
const DefaultRatesTable = "ecb_exchange_rates"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string `validate:"required"`
	IsProduction  bool
	LogLevel      string `validate:"oneof=debug info warn error"`
	RunMigrations bool

	Feed   FeedConfig
	Store  StoreConfig
	Orders OrdersConfig

	PushgatewayURL string `validate:"omitempty,url"`
}

// FeedConfig describes where and how the reference rates are fetched.
type FeedConfig struct {
	URL        string        `validate:"required,url"`
	Format     string        `validate:"oneof=xml zip"`
	Timeout    time.Duration `validate:"gt=0"`
	Attempts   int           `validate:"gte=1,lte=10"`
	ArchiveDir string
}

// StoreConfig configures the rate table.
type StoreConfig struct {
	RatesTable  string `validate:"required"`
	AtomicBatch bool
}

// OrdersConfig maps the externally owned orders table.
type OrdersConfig struct {
	Table          string `validate:"required"`
	IDColumn       string `validate:"required"`
	AmountColumn   string `validate:"required"`
	CurrencyColumn string `validate:"required"`
	// DiscountColumn is optional; when set it is subtracted from the amount before conversion.
	DiscountColumn string
	ReprocessAll   bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("ECB_FEED_URL", DefaultFeedURL)
	v.SetDefault("ECB_FEED_FORMAT", FeedFormatXML)
	v.SetDefault("ECB_FEED_TIMEOUT", "30s")
	v.SetDefault("ECB_FETCH_ATTEMPTS", 1)
	v.SetDefault("ECB_ARCHIVE_DIR", "")
	v.SetDefault("RATES_TABLE", DefaultRatesTable)
	v.SetDefault("STORE_ATOMIC_BATCH", true)
	v.SetDefault("ORDERS_TABLE", "orders")
	v.SetDefault("ORDERS_ID_COLUMN", "order_id")
	v.SetDefault("ORDERS_AMOUNT_COLUMN", "amount")
	v.SetDefault("ORDERS_CURRENCY_COLUMN", "currency_code")
	v.SetDefault("ORDERS_DISCOUNT_COLUMN", "")
	v.SetDefault("CONVERT_REPROCESS_ALL", false)
	v.SetDefault("PUSHGATEWAY_URL", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.LogLevel = strings.ToLower(v.GetString("LOG_LEVEL"))
	cfg.RunMigrations = v.GetBool("RUN_MIGRATIONS")

	timeoutStr := v.GetString("ECB_FEED_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		log.Printf("Warning: Invalid value for ECB_FEED_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout.String())
	}

	cfg.Feed = FeedConfig{
		URL:        v.GetString("ECB_FEED_URL"),
		Format:     strings.ToLower(v.GetString("ECB_FEED_FORMAT")),
		Timeout:    timeout,
		Attempts:   v.GetInt("ECB_FETCH_ATTEMPTS"),
		ArchiveDir: v.GetString("ECB_ARCHIVE_DIR"),
	}
	cfg.Store = StoreConfig{
		RatesTable:  v.GetString("RATES_TABLE"),
		AtomicBatch: v.GetBool("STORE_ATOMIC_BATCH"),
	}
	cfg.Orders = OrdersConfig{
		Table:          v.GetString("ORDERS_TABLE"),
		IDColumn:       v.GetString("ORDERS_ID_COLUMN"),
		AmountColumn:   v.GetString("ORDERS_AMOUNT_COLUMN"),
		CurrencyColumn: v.GetString("ORDERS_CURRENCY_COLUMN"),
		DiscountColumn: v.GetString("ORDERS_DISCOUNT_COLUMN"),
		ReprocessAll:   v.GetBool("CONVERT_REPROCESS_ALL"),
	}
	cfg.PushgatewayURL = v.GetString("PUSHGATEWAY_URL")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MigrationsApply reports whether the embedded migrations should run. They only
// describe the default rate table; a renamed table is created by the store itself.
func (c *Config) MigrationsApply() bool {
	return c.RunMigrations && c.Store.RatesTable == DefaultRatesTable
}
