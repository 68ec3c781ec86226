// Package provider implements clients for the external text-generation
// services that perform the actual code-switching. Each completion is a
// single prompt in, single text out exchange; failed calls are surfaced to
// the caller as-is and are never retried here.
package provider

import (
	"context"
	"fmt"
)

// Provider defines the interface for language model providers
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModelName() string
	GetProviderName() string
	IsAvailable() bool
	EstimateCost(prompt string) float64
}

// Registry holds the configured providers by name
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry from the given providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.providers[p.GetProviderName()] = p
	}
	return r
}

// Get returns a provider by name, erroring when it is missing or has no
// credentials configured
func (r *Registry) Get(name string) (Provider, error) {
	p, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	if !p.IsAvailable() {
		return nil, fmt.Errorf("provider %s is not available (missing API key)", name)
	}
	return p, nil
}

// Names returns the names of all registered providers
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
