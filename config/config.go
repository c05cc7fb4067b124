package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	Expiry   ExpiryConfig   `mapstructure:"expiry"`
}

// ServerConfig holds the listen address. An empty AllowedOrigins means the
// local web client origins only.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RulesConfig points at an optional TOML rule set; empty means built-in rules.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

type LedgerConfig struct {
	BlockInUseFieldDelete bool `mapstructure:"block_in_use_field_delete"`
}

// AdvisorConfig holds the Gemini settings for the regulations advisor.
type AdvisorConfig struct {
	APIKeyEnv string        `mapstructure:"api_key_env"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ExpiryConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	WindowDays    int           `mapstructure:"window_days"`
}

// Load reads configuration from file and env. Env var overrides use prefix MARINALOG_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "marinalog", "marinalog.db"))
	v.SetDefault("rules.path", "")
	v.SetDefault("ledger.block_in_use_field_delete", false)
	v.SetDefault("advisor.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("advisor.api_key", "")
	v.SetDefault("advisor.model", "gemini-2.5-flash")
	v.SetDefault("advisor.timeout", 30*time.Second)
	v.SetDefault("expiry.check_interval", 24*time.Hour)
	v.SetDefault("expiry.window_days", 60)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MARINALOG_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "marinalog"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MARINALOG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present; an explicit MARINALOG_CONFIG must exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// ResolveAPIKey returns the advisor key: the named environment variable first,
// then the key stored in the config file.
func (a AdvisorConfig) ResolveAPIKey() string {
	if env := strings.TrimSpace(a.APIKeyEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return strings.TrimSpace(a.APIKey)
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
