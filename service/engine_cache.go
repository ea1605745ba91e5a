package service

import (
	"strings"
	"sync"
)

// EngineCache maps (session, document) keys to built query engines. A build
// function runs at most once per key: concurrent first requests for the
// same unseen key serialize on the entry lock and the loser receives the
// winner's engine. A failed build unsets the key so a later upload can
// re-attempt. There is no eviction beyond Clear; unbounded growth is an
// accepted trade-off at this scope.
type EngineCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu     sync.Mutex
	built  bool
	engine *QueryEngine
}

func NewEngineCache() *EngineCache {
	return &EngineCache{
		entries: make(map[string]*cacheEntry),
	}
}

// GetOrBuild returns the engine for key, invoking build only if no engine
// has been built for the key yet.
func (c *EngineCache) GetOrBuild(key string, build func() (*QueryEngine, error)) (*QueryEngine, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.built {
		return entry.engine, nil
	}

	engine, err := build()
	if err != nil {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, err
	}

	entry.engine = engine
	entry.built = true

	// A concurrent failed build may have dropped the key while this caller
	// held the entry. Put the entry back so the engine stays reachable via
	// Get; a newer entry registered in the meantime wins.
	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = entry
	}
	c.mu.Unlock()
	return engine, nil
}

// Get returns the engine for key if one has been built.
func (c *EngineCache) Get(key string) (*QueryEngine, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.built {
		return nil, false
	}
	return entry.engine, true
}

// Clear removes every entry belonging to a session without touching other
// sessions.
func (c *EngineCache) Clear(sessionID string) {
	prefix := sessionID + "-"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
