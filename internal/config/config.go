// Package config wraps viper with nil-safe accessors and the service defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: server.port is read from
// TOURSTREAM_SERVER_PORT.
const EnvPrefix = "TOURSTREAM"

// DefaultLocations and DefaultCategories are the storefront filter
// vocabularies, without the "all" entry.
var (
	DefaultLocations  = []string{"서울", "부산", "제주도", "강원도"}
	DefaultCategories = []string{"해양스포츠", "도심체험", "겨울스포츠", "육상스포츠"}
)

// Config is a read-only view over a viper instance. The zero value and a
// Config built from a nil viper return zero values for every key.
type Config struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.rate_limit.rps", 20.0)
	v.SetDefault("server.rate_limit.burst", 40)

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.cache_size", 256)
	v.SetDefault("catalog.locations", DefaultLocations)
	v.SetDefault("catalog.categories", DefaultCategories)

	v.SetDefault("analytics.log", true)
	v.SetDefault("analytics.metrics", true)
	v.SetDefault("analytics.journal_dsn", ":memory:")

	v.SetDefault("mcp.http_addr", "")
	v.SetDefault("mcp.api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load builds a Config from defaults, the optional file at path and
// TOURSTREAM_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}
	return New(v), nil
}

// Viper returns the wrapped instance, which may be nil.
func (c *Config) Viper() *viper.Viper {
	if c == nil {
		return nil
	}
	return c.v
}

func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetFloat64(key string) float64 {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetFloat64(key)
}

func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) GetStringSlice(key string) []string {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.GetStringSlice(key)
}

func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree at key. A missing subtree yields an empty Config,
// never nil.
func (c *Config) Sub(key string) *Config {
	if c == nil || c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole tree into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}
