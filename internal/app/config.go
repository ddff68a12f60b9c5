package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
	"github.com/m3rciful/shopbot/internal/catalog"
)

// ShopConfig holds the ordering-domain settings.
type ShopConfig struct {
	// StartBalance is granted to every account on first contact.
	StartBalance int64  `yaml:"start_balance" envconfig:"SHOP_START_BALANCE"`
	Currency     string `yaml:"currency" envconfig:"SHOP_CURRENCY"`
	// DialogTTLMinutes bounds how long an abandoned conversation survives.
	DialogTTLMinutes int    `yaml:"dialog_ttl_minutes" envconfig:"SHOP_DIALOG_TTL_MINUTES"`
	SweepSpec        string `yaml:"sweep_spec"`
	DigestSpec       string `yaml:"digest_spec"`
	// Products seeds the catalog; empty falls back to the built-in set.
	Products []catalog.Product `yaml:"products"`
}

// Config aggregates core, database and shop configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Shop     ShopConfig          `yaml:"shop"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}

	if cfg.Shop.StartBalance <= 0 {
		cfg.Shop.StartBalance = 1000
	}
	if cfg.Shop.Currency == "" {
		cfg.Shop.Currency = "₽"
	}
	if cfg.Shop.DialogTTLMinutes <= 0 {
		cfg.Shop.DialogTTLMinutes = 30
	}
	return &cfg, nil
}
