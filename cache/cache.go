// Package cache holds large objects that are expensive to load, such as
// solved tables read from disk, so that repeated loads of the same key are
// served from memory.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/bearoff/config"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

type LoadFunc func(cfg *config.Config, key string) (any, error)

// GlobalObjectCache is shared by everything in the process.
var GlobalObjectCache *cache

func (c *cache) get(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("cache-hit")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("cache-load")
	obj, err := loadFunc(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

// Load returns the object for key, calling loadFunc only the first time.
// Failed loads are not cached.
func Load(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.get(cfg, key, loadFunc)
}

// Forget drops key so the next Load reads it again.
func Forget(key string) {
	if GlobalObjectCache == nil {
		return
	}
	GlobalObjectCache.Lock()
	delete(GlobalObjectCache.objects, key)
	GlobalObjectCache.Unlock()
}
