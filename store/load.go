package store

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/domino14/bearoff/cache"
	"github.com/domino14/bearoff/config"
)

// CacheKey names a table on disk for the object cache: "text:<path>" or
// "sqlite:<path>".
func CacheKey(format, path string) string {
	return format + ":" + path
}

// loadEntries is a cache.LoadFunc.
func loadEntries(cfg *config.Config, key string) (any, error) {
	format, path, ok := strings.Cut(key, ":")
	if !ok {
		return nil, fmt.Errorf("bad table key %q", key)
	}
	switch format {
	case config.FormatText:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadText(f)
	case config.FormatSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Load(context.Background())
	}
	return nil, fmt.Errorf("unknown table format %q", format)
}

// LoadCached reads a table through the global object cache.
func LoadCached(cfg *config.Config, format, path string) ([]Entry, error) {
	obj, err := cache.Load(cfg, CacheKey(format, path), loadEntries)
	if err != nil {
		return nil, err
	}
	return obj.([]Entry), nil
}
