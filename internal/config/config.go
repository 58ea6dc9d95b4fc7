package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	MokuIP                string        `mapstructure:"moku_ip"`
	MokuSlot              string        `mapstructure:"moku_slot"`
	ForceConnect          bool          `mapstructure:"force_connect"`
	RelinquishOnExit      bool          `mapstructure:"relinquish_on_exit"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	OscChannel    int    `mapstructure:"osc_channel"`
	OscCoupling   string `mapstructure:"osc_coupling"`
	OscImpedance  string `mapstructure:"osc_impedance"`
	OscRange      string `mapstructure:"osc_range"`
	WaitReacquire bool   `mapstructure:"wait_reacquire"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "moku-oscilloscope")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("moku_ip", "192.168.73.1")
	v.SetDefault("moku_slot", "slot1")
	v.SetDefault("force_connect", true)
	v.SetDefault("relinquish_on_exit", false)
	v.SetDefault("request_timeout_seconds", 30)

	v.SetDefault("osc_channel", 1)
	v.SetDefault("osc_coupling", "DC")
	v.SetDefault("osc_impedance", "1MOhm")
	v.SetDefault("osc_range", "10Vpp")
	v.SetDefault("wait_reacquire", true)

	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/frames.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.MokuIP = strings.TrimSpace(cfg.MokuIP)
	if cfg.MokuIP == "" {
		return nil, fmt.Errorf("invalid moku_ip (must not be empty)")
	}
	cfg.MokuSlot = strings.TrimSpace(cfg.MokuSlot)

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.OscChannel < 1 {
		return nil, fmt.Errorf("invalid osc_channel (must be 1 or greater)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
