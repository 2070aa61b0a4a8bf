package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/pflag"
)

func flags(c *Config, args ...string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	return fs
}

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.NoErr(c.Load(nil))
	is.Equal(c.GetInt(ConfigMaxCheckers), 15)
	is.Equal(c.GetString(ConfigFormat), FormatText)
	is.Equal(c.GetFloat64(ConfigSimConfidence), 99.0)
	is.Equal(c.GetBool(ConfigDebug), false)
}

func TestPrecedence(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bearoff.yaml")
	is.NoErr(os.WriteFile(path, []byte("max-checkers: 5\nthreads: 2\nformat: report\n"), 0o644))

	t.Setenv("BEAROFF_THREADS", "3")
	t.Setenv("BEAROFF_SIM_ITERATIONS", "42")

	c := DefaultConfig()
	fs := flags(c, "--config-file", path, "--format", "sqlite")
	is.NoErr(c.Load(fs))
	// file beats default
	is.Equal(c.GetInt(ConfigMaxCheckers), 5)
	// env beats file
	is.Equal(c.GetInt(ConfigThreads), 3)
	is.Equal(c.GetInt(ConfigSimIterations), 42)
	// flag beats file
	is.Equal(c.GetString(ConfigFormat), FormatSQLite)
}

func TestInvalid(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.True(errors.Is(c.Load(flags(c, "--format", "xml")), ErrInvalid))

	c = DefaultConfig()
	is.True(errors.Is(c.Load(flags(c, "--sim-confidence", "100")), ErrInvalid))

	c = DefaultConfig()
	is.True(c.Load(flags(c, "--config-file", filepath.Join(t.TempDir(), "missing.yaml"))) != nil)
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.AdjustRelativePaths("/opt/bearoff")
	is.Equal(c.GetString(ConfigDBPath), "/opt/bearoff/bearoff.db")
	c.Set(ConfigDBPath, "/tmp/x.db")
	c.AdjustRelativePaths("/opt/bearoff")
	is.Equal(c.GetString(ConfigDBPath), "/tmp/x.db")
}
