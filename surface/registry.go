// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"sync"

	"github.com/gogpu/bitwalk"
)

// Options configures a factory created through the registry.
type Options struct {
	// TileSize is the side length of each tile surface in pixels.
	TileSize int

	// Background fills new image tiles. Nil means transparent.
	Background color.Color
}

// Builder creates a bitwalk.SurfaceFactory from options.
// Implementations should validate options and return descriptive errors.
type Builder func(opts Options) (bitwalk.SurfaceFactory, error)

// RegistryEntry represents a registered surface backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines the default choice (higher = preferred).
	Priority int

	// Builder creates factories for this backend.
	Builder Builder
}

// globalRegistry is the default registry.
var globalRegistry = NewRegistry()

func init() {
	globalRegistry.Register("image", 100, func(opts Options) (bitwalk.SurfaceFactory, error) {
		if opts.TileSize <= 0 {
			return nil, fmt.Errorf("surface: image backend: tile size %d must be positive", opts.TileSize)
		}
		return NewImageFactory(opts.TileSize, opts.Background), nil
	})
	globalRegistry.Register("record", 10, func(Options) (bitwalk.SurfaceFactory, error) {
		return NewRecordingFactory(), nil
	})
	globalRegistry.Register("discard", 0, func(Options) (bitwalk.SurfaceFactory, error) {
		return DiscardFactory{}, nil
	})
}

// Registry manages named surface backends.
//
// Thread safety: Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and NewFactory.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a backend to the global registry. Registering a name that
// already exists replaces the previous entry.
func Register(name string, priority int, b Builder) {
	globalRegistry.Register(name, priority, b)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// NewFactory creates a factory using the named backend. An empty name
// selects the highest-priority backend.
func NewFactory(name string, opts Options) (bitwalk.SurfaceFactory, error) {
	return globalRegistry.NewFactory(name, opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[name] = &RegistryEntry{
		Name:     name,
		Priority: priority,
		Builder:  b,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames()
}

// NewFactory creates a factory using the named backend, or the
// highest-priority one if name is empty.
func (r *Registry) NewFactory(name string, opts Options) (bitwalk.SurfaceFactory, error) {
	r.mu.RLock()
	if name == "" {
		if names := r.sortedNames(); len(names) > 0 {
			name = names[0]
		}
	}
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if name == "" {
		return nil, ErrNoBackendAvailable
	}
	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	return entry.Builder(opts)
}

// sortedNames returns backend names sorted by priority (highest first),
// ties broken by name. Must be called with lock held.
func (r *Registry) sortedNames() []string {
	if len(r.entries) == 0 {
		return nil
	}

	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no surface backends are registered.
	ErrNoBackendAvailable = errors.New("surface: no backend available")
)

// BackendNotFoundError is returned when a requested backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}
