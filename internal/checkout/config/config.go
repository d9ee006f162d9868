// Package config loads the checkout demo configuration from file and
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for the checkout demo server.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	BaseURL     string `mapstructure:"base_url"`
	MerchantID  int    `mapstructure:"merchant_id"`
	APIKey      string `mapstructure:"api_key"`
	SiteID      int    `mapstructure:"site_id"`
	SiteKey     string `mapstructure:"site_key"`
	Testmode    bool   `mapstructure:"testmode"`
	DebugLevel  int    `mapstructure:"debug_level"`
	Language    string `mapstructure:"language"`
	OrderDBPath string `mapstructure:"order_db_path"`
}

// Load reads checkout.yaml from the working directory, with CHECKOUT_*
// environment variables taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("checkout")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/checkout")

	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8085")
	v.SetDefault("base_url", "http://localhost:8085")
	v.SetDefault("testmode", true)
	v.SetDefault("debug_level", 0)
	v.SetDefault("language", "en")
	v.SetDefault("order_db_path", "orders.db")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.MerchantID == 0 {
		return nil, fmt.Errorf("merchant_id is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if cfg.SiteID == 0 {
		return nil, fmt.Errorf("site_id is required")
	}
	return &cfg, nil
}
