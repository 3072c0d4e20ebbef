// Package config wraps viper behind a small read-only accessor and loads
// the service configuration file with its defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is a read-only view over a viper instance. A nil viper yields
// zero values rather than panics.
type Config struct {
	v *viper.Viper
}

// New wraps a viper instance.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// GetString returns the string value for key, or "" when unset.
func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// GetInt returns the int value for key, or 0 when unset.
func (c *Config) GetInt(key string) int {
	if c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

// GetBool returns the bool value for key, or false when unset.
func (c *Config) GetBool(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

// GetDuration returns the duration value for key, or 0 when unset.
func (c *Config) GetDuration(key string) time.Duration {
	if c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

// IsSet reports whether key has a value.
func (c *Config) IsSet(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree rooted at key. Missing keys yield an empty
// Config, never nil.
func (c *Config) Sub(key string) *Config {
	if c.v == nil {
		return &Config{}
	}
	return &Config{v: c.v.Sub(key)}
}

// Unmarshal decodes the configuration into target via mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// Settings is the service configuration.
type Settings struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`
	Store struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"store"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Addr is the host:port the HTTP server binds to.
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

// Load reads the configuration file at path (YAML) and applies defaults.
// An empty path loads defaults only; a missing file at an explicit path is
// an error.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8420)
	v.SetDefault("store.path", "stationscope.db")
	v.SetDefault("log.level", "info")
	v.SetEnvPrefix("STATIONSCOPE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}
