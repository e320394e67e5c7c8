package adapters

import (
	"path/filepath"
	"strings"
)

// Adapter turns raw source content into prose suitable for sentence analysis
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given source/content type
	CanHandle(source string, contentType string) bool

	// Extract returns the analyzable text of the content
	Extract(content string) (string, error)
}

// Registry manages input adapters
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewHTMLAdapter())

	// Plain text is the fallback
	registry.fallback = NewPlainAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given source and content type
func (r *Registry) FindAdapter(source string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(source, contentType) {
			return adapter
		}
	}
	return r.fallback
}

// Get returns an adapter by name
func (r *Registry) Get(name string) (Adapter, bool) {
	if r.fallback.Name() == name {
		return r.fallback, true
	}
	for _, adapter := range r.adapters {
		if adapter.Name() == name {
			return adapter, true
		}
	}
	return nil, false
}

// extension returns the lowercased file extension of a path or URL
func extension(source string) string {
	if idx := strings.IndexAny(source, "?#"); idx >= 0 {
		source = source[:idx]
	}
	return strings.ToLower(filepath.Ext(source))
}
