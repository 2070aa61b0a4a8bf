// Package config loads settings from flags, BEAROFF_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug         = "debug"
	ConfigThreads       = "threads"
	ConfigMaxCheckers   = "max-checkers"
	ConfigOutput        = "output"
	ConfigFormat        = "format"
	ConfigDBPath        = "db-path"
	ConfigSimIterations = "sim-iterations"
	ConfigSimConfidence = "sim-confidence"
	ConfigSimTolerance  = "sim-tolerance"
	ConfigSimPolicy     = "sim-policy"
	ConfigMemoShards    = "memo-shards"
	ConfigCPUProfile    = "cpu-profile"
	ConfigVerify        = "verify"
	ConfigFile          = "config-file"
)

const (
	FormatText   = "text"
	FormatReport = "report"
	FormatSQLite = "sqlite"
)

var ErrInvalid = errors.New("config: invalid setting")

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only defaults.
func DefaultConfig() *Config {
	v := viper.New()
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigThreads, 0)
	v.SetDefault(ConfigMaxCheckers, 15)
	v.SetDefault(ConfigOutput, "")
	v.SetDefault(ConfigFormat, FormatText)
	v.SetDefault(ConfigDBPath, "./bearoff.db")
	v.SetDefault(ConfigSimIterations, 10000)
	v.SetDefault(ConfigSimConfidence, 99.0)
	v.SetDefault(ConfigSimTolerance, 0.0)
	v.SetDefault(ConfigSimPolicy, "optimal")
	v.SetDefault(ConfigMemoShards, 64)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigVerify, false)
	v.SetDefault(ConfigFile, "")
	return &Config{v}
}

// AddFlags registers every setting on fs, using the defaults as flag
// defaults.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.Bool(ConfigDebug, c.GetBool(ConfigDebug), "debug logging on")
	fs.Int(ConfigThreads, c.GetInt(ConfigThreads), "worker goroutines; 0 means one per CPU")
	fs.Int(ConfigMaxCheckers, c.GetInt(ConfigMaxCheckers), "solve every position with up to this many checkers")
	fs.String(ConfigOutput, c.GetString(ConfigOutput), "write the table here instead of stdout")
	fs.String(ConfigFormat, c.GetString(ConfigFormat), "table format: text, report or sqlite")
	fs.String(ConfigDBPath, c.GetString(ConfigDBPath), "sqlite database for the sqlite format")
	fs.Int(ConfigSimIterations, c.GetInt(ConfigSimIterations), "games per simulation")
	fs.Float64(ConfigSimConfidence, c.GetFloat64(ConfigSimConfidence), "confidence level in percent for simulation intervals")
	fs.Float64(ConfigSimTolerance, c.GetFloat64(ConfigSimTolerance), "stop a simulation once the interval half-width is below this")
	fs.String(ConfigSimPolicy, c.GetString(ConfigSimPolicy), "simulation policy: optimal or greedy")
	fs.Int(ConfigMemoShards, c.GetInt(ConfigMemoShards), "shards in the memo table")
	fs.String(ConfigCPUProfile, c.GetString(ConfigCPUProfile), "write a CPU profile here")
	fs.Bool(ConfigVerify, c.GetBool(ConfigVerify), "check for revisited positions while solving")
	fs.String(ConfigFile, c.GetString(ConfigFile), "config file (yaml, toml or json)")
}

// Load binds fs (which may be nil), the environment and the config file, then
// validates the result.
func (c *Config) Load(fs *pflag.FlagSet) error {
	if fs != nil {
		if err := c.BindPFlags(fs); err != nil {
			return err
		}
	}
	c.SetEnvPrefix("BEAROFF")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	switch c.GetString(ConfigFormat) {
	case FormatText, FormatReport, FormatSQLite:
	default:
		return fmt.Errorf("%w: %s %q", ErrInvalid, ConfigFormat, c.GetString(ConfigFormat))
	}
	if c.GetInt(ConfigMaxCheckers) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, ConfigMaxCheckers)
	}
	if c.GetInt(ConfigThreads) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, ConfigThreads)
	}
	if conf := c.GetFloat64(ConfigSimConfidence); conf <= 0 || conf >= 100 {
		return fmt.Errorf("%w: %s must be between 0 and 100", ErrInvalid, ConfigSimConfidence)
	}
	return nil
}

// AdjustRelativePaths makes relative file settings relative to basePath,
// usually the executable's directory.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, k := range []string{ConfigDBPath} {
		p := c.GetString(k)
		if p != "" && !filepath.IsAbs(p) {
			c.Set(k, filepath.Join(basePath, p))
		}
	}
}

// SanitizedSettings returns every setting, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
