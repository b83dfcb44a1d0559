package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

type document struct {
	value  []byte
	loaded bool
	dirty  bool
}

// Cache fronts a Store for the lifetime of the process. Bootstrap indexes
// every key up front; content is loaded on first Read and written back by
// Flush. All methods are safe for concurrent use.
type Cache struct {
	store Store

	mu   sync.RWMutex
	docs map[string]*document
}

func NewCache(store Store) *Cache {
	return &Cache{store: store, docs: make(map[string]*document)}
}

// Bootstrap indexes the store and eagerly loads keys under any of
// namespaces.
func (c *Cache) Bootstrap(ctx context.Context, namespaces ...string) error {
	keys, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap index: %w", err)
	}

	var eager []string
	c.mu.Lock()
	for _, key := range keys {
		if _, ok := c.docs[key]; !ok {
			c.docs[key] = &document{}
		}
		for _, ns := range namespaces {
			if InNamespace(key, ns) {
				eager = append(eager, key)
				break
			}
		}
	}
	c.mu.Unlock()

	if err := c.Resolve(ctx, eager...); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

// Resolve loads any of keys whose content is not yet in memory.
func (c *Cache) Resolve(ctx context.Context, keys ...string) error {
	c.mu.RLock()
	var pending []string
	for _, key := range keys {
		if d, ok := c.docs[key]; !ok || !d.loaded {
			pending = append(pending, key)
		}
	}
	c.mu.RUnlock()

	if len(pending) == 0 {
		return nil
	}

	entries, err := c.store.Load(ctx, pending...)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		d, ok := c.docs[e.Key]
		if !ok {
			d = &document{}
			c.docs[e.Key] = d
		}
		// A concurrent Set wins over what was on disk.
		if !d.dirty {
			d.value = e.Value
			d.loaded = true
		}
	}
	return nil
}

// Read returns the document at key, loading it when needed. Keys the index
// does not know fail with ErrKeyNotFound without touching the store.
func (c *Cache) Read(ctx context.Context, key string) ([]byte, error) {
	if !c.Has(key) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err := c.Resolve(ctx, key); err != nil {
		return nil, err
	}
	val, _ := c.Get(key)
	return val, nil
}

// Get returns a copy of loaded content. It never performs I/O.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.docs[key]
	if !ok || !d.loaded {
		return nil, false
	}
	return slices.Clone(d.value), true
}

// Set stages value for the next Flush.
func (c *Cache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs[key] = &document{value: slices.Clone(value), loaded: true, dirty: true}
}

func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.docs[key]
	return ok
}

// KeysWithPrefix returns the sorted indexed keys under prefix.
func (c *Cache) KeysWithPrefix(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	for key := range c.docs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Flush saves every staged document. Documents stay staged when the save
// fails so a later Flush retries them.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.RLock()
	var (
		staged []Entry
		docs   = make(map[string]*document)
	)
	for key, d := range c.docs {
		if d.dirty {
			staged = append(staged, Entry{Key: key, Value: d.value})
			docs[key] = d
		}
	}
	c.mu.RUnlock()

	if len(staged) == 0 {
		return nil
	}
	slices.SortFunc(staged, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })

	if err := c.store.Save(ctx, staged...); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, d := range docs {
		// Set replaces the document, so a rewrite during Save stays dirty.
		if c.docs[key] == d {
			d.dirty = false
		}
	}
	return nil
}
