package loader

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps tags to Loaders and kv keys to KeyLoaders. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	loaders map[Tag]Loader
	keys    map[string]KeyLoader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[Tag]Loader),
		keys:    make(map[string]KeyLoader),
	}
}

// Register adds a loader. It returns an error if the tag is already bound.
func (r *Registry) Register(l Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := l.Tag()
	if _, exists := r.loaders[tag]; exists {
		return fmt.Errorf("loader %q already registered", tag)
	}
	r.loaders[tag] = l
	return nil
}

// RegisterKey adds a kv key loader. It returns an error if the key is
// already bound.
func (r *Registry) RegisterKey(k KeyLoader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := k.Key()
	if _, exists := r.keys[key]; exists {
		return fmt.Errorf("key loader %q already registered", key)
	}
	r.keys[key] = k
	return nil
}

// Get returns the loader bound to tag, or false if not found.
func (r *Registry) Get(tag Tag) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.loaders[tag]
	return l, ok
}

// Key returns the key loader bound to key, or false if not found.
func (r *Registry) Key(key string) (KeyLoader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.keys[key]
	return k, ok
}

// List returns a sorted slice of all registered tags.
func (r *Registry) List() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]Tag, 0, len(r.loaders))
	for tag := range r.loaders {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Keys returns a sorted slice of all registered kv keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.keys))
	for key := range r.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
