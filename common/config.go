package common

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// Config keys recognized in a berngrid config file.
const (
	KeyGridPoints   = "grid_points"
	KeyPriorShape   = "prior_shape"
	KeyCredibleMass = "credible_mass"
	KeyPlotPoints   = "plot_points"
)

// Config wraps a viper instance holding defaults for the CLI. Flags given
// on the command line take precedence over config values.
type Config struct {
	conf *viper.Viper
	mu   sync.RWMutex
}

// NewConfig reads a config file from path. Any format viper understands
// (yaml, toml, json) is accepted.
func NewConfig(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &Config{conf: vp}, nil
}

// EmptyConfig returns a Config with no values set, so lookups fall back
// to the supplied defaults.
func EmptyConfig() *Config {
	return &Config{conf: viper.New()}
}

func (c *Config) GetInt(key string, def int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.conf.IsSet(key) {
		return def
	}
	return c.conf.GetInt(key)
}

func (c *Config) GetFloat64(key string, def float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.conf.IsSet(key) {
		return def
	}
	return c.conf.GetFloat64(key)
}

func (c *Config) GetString(key string, def string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.conf.IsSet(key) {
		return def
	}
	return c.conf.GetString(key)
}

func (c *Config) GetBool(key string, def bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.conf.IsSet(key) {
		return def
	}
	return c.conf.GetBool(key)
}
