package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility/fixed"
)

type Config struct {
	Trader     TraderConfig     `yaml:"trader"`
	Instrument InstrumentConfig `yaml:"instrument"`
	Cache      CacheConfig      `yaml:"cache"`
	Backtest   BacktestConfig   `yaml:"backtest"`
	Live       LiveConfig       `yaml:"live"`
}

type TraderConfig struct {
	ID      string `yaml:"id"`
	Account string `yaml:"account"`
}

type InstrumentConfig struct {
	ID             string `yaml:"id"`
	Venue          string `yaml:"venue"`
	PricePrecision int    `yaml:"price_precision"`
	SizePrecision  int    `yaml:"size_precision"`
	Multiplier     string `yaml:"multiplier"`
	Inverse        bool   `yaml:"inverse"`
	BaseCurrency   string `yaml:"base_currency"`
	QuoteCurrency  string `yaml:"quote_currency"`
	CostCurrency   string `yaml:"cost_currency"`
}

// Instrument converts the yaml section into contract terms. The cost currency
// defaults to the base currency for inverse contracts and the quote currency
// otherwise.
func (c InstrumentConfig) Instrument() (common.Instrument, error) {
	multiplier := fixed.One
	if c.Multiplier != "" {
		var err error
		multiplier, err = fixed.FromString(c.Multiplier)
		if err != nil {
			return common.Instrument{}, fmt.Errorf("invalid multiplier %q: %w", c.Multiplier, err)
		}
	}

	cost := common.Currency(c.CostCurrency)
	if cost == "" {
		cost = common.Currency(c.QuoteCurrency)
		if c.Inverse {
			cost = common.Currency(c.BaseCurrency)
		}
	}

	return common.Instrument{
		ID:             common.InstrumentID(c.ID),
		Venue:          common.Venue(c.Venue),
		PricePrecision: c.PricePrecision,
		SizePrecision:  c.SizePrecision,
		Multiplier:     multiplier,
		IsInverse:      c.Inverse,
		BaseCurrency:   common.Currency(c.BaseCurrency),
		QuoteCurrency:  common.Currency(c.QuoteCurrency),
		CostCurrency:   cost,
	}, nil
}

type CacheConfig struct {
	Path string `yaml:"path"` // empty keeps the session in memory
}

type BacktestConfig struct {
	Source string    `yaml:"source"` // "mapper" or "duckdb"
	Path   string    `yaml:"path"`
	Symbol string    `yaml:"symbol"`
	From   time.Time `yaml:"from"`
	To     time.Time `yaml:"to"`
}

type LiveConfig struct {
	URL       string `yaml:"url"`
	QueueSize int    `yaml:"queue_size"`
}

func loadConfig(path string) (Config, error) {
	cfg := Config{
		Trader: TraderConfig{ID: "TRADER-001", Account: "SIM-001"},
		Live:   LiveConfig{QueueSize: 1024},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}
