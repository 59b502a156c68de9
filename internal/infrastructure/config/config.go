package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	DefaultRestURL = "https://api.hyperliquid.xyz"
	DefaultWsURL   = "wss://api.hyperliquid.xyz/ws"
)

type Config struct {
	App struct {
		LogLevel string `toml:"log_level"`
		NoColor  bool   `toml:"no_color"`
	} `toml:"app"`

	Report struct {
		OutputPath string `toml:"output_path"`
		TopN       int    `toml:"top_n"`
		EveryMin   int    `toml:"every_min"` // 0 = 只运行一次
		Quiet      bool   `toml:"quiet"`     // 不打印终端摘要
	} `toml:"report"`

	Capture struct {
		Asset           string `toml:"asset"`
		OutputPath      string `toml:"output_path"`
		TimeoutSec      int    `toml:"timeout_sec"`
		ConnectGraceSec int    `toml:"connect_grace_sec"`
	} `toml:"capture"`

	Exchange struct {
		Hyperliquid struct {
			RestURL        string  `toml:"rest_url"`
			WsURL          string  `toml:"ws_url"`
			RequestsPerSec float64 `toml:"requests_per_sec"`
			MaxRetries     int     `toml:"max_retries"`
		} `toml:"hyperliquid"`
	} `toml:"exchange"`

	Redis struct {
		Enabled  bool   `toml:"enabled"`
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
		Channel  string `toml:"channel"`
	} `toml:"redis"`
}

// Load reads the TOML file at path. A missing file is not an error: the
// defaults alone describe a working setup.
func Load(path string) (*Config, error) {
	var (
		cfg Config
		md  toml.MetaData
	)
	if _, err := os.Stat(path); err == nil {
		if md, err = toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	applyDefaults(&cfg, md)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated config built from defaults only.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg, toml.MetaData{})
	_ = validate(&cfg)
	return &cfg
}

// applyDefaults fills unset keys; md tells an explicit zero from an absent key.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if strings.TrimSpace(cfg.App.LogLevel) == "" {
		cfg.App.LogLevel = "info"
	}
	if strings.TrimSpace(cfg.Report.OutputPath) == "" {
		cfg.Report.OutputPath = "market_summary.json"
	}
	if cfg.Report.TopN <= 0 {
		cfg.Report.TopN = 5
	}
	if cfg.Report.EveryMin < 0 {
		cfg.Report.EveryMin = 0
	}
	if strings.TrimSpace(cfg.Capture.Asset) == "" {
		cfg.Capture.Asset = "ETH"
	}
	if strings.TrimSpace(cfg.Capture.OutputPath) == "" {
		cfg.Capture.OutputPath = "snapshot.json"
	}
	if cfg.Capture.TimeoutSec <= 0 {
		cfg.Capture.TimeoutSec = 20
	}
	if cfg.Capture.ConnectGraceSec <= 0 {
		cfg.Capture.ConnectGraceSec = 3
	}
	hl := &cfg.Exchange.Hyperliquid
	if strings.TrimSpace(hl.RestURL) == "" {
		hl.RestURL = DefaultRestURL
	}
	if strings.TrimSpace(hl.WsURL) == "" {
		hl.WsURL = DefaultWsURL
	}
	if hl.RequestsPerSec <= 0 {
		hl.RequestsPerSec = 2
	}
	// max_retries = 0 关闭重试
	if hl.MaxRetries < 0 || !md.IsDefined("exchange", "hyperliquid", "max_retries") {
		hl.MaxRetries = 2
	}
	if strings.TrimSpace(cfg.Redis.Channel) == "" {
		cfg.Redis.Channel = "hlsnap:report"
	}
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.App.LogLevel)); err != nil {
		return fmt.Errorf("app.log_level invalid: %q", cfg.App.LogLevel)
	}

	cfg.Capture.Asset = NormalizeAsset(cfg.Capture.Asset)
	if cfg.Capture.Asset == "" {
		return errors.New("capture.asset is empty")
	}

	if err := checkURL(cfg.Exchange.Hyperliquid.RestURL, "http", "https"); err != nil {
		return fmt.Errorf("exchange.hyperliquid.rest_url: %w", err)
	}
	if err := checkURL(cfg.Exchange.Hyperliquid.WsURL, "ws", "wss"); err != nil {
		return fmt.Errorf("exchange.hyperliquid.ws_url: %w", err)
	}

	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("want %s url, got %q", strings.Join(schemes, "/"), raw)
}

// NormalizeAsset upper-cases and trims a coin symbol ("eth " -> "ETH").
func NormalizeAsset(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
