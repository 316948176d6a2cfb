// Package llm builds vision chat clients for the configured provider and
// defines the error types every provider reports failures with.
package llm

import (
	"fmt"
	"sort"
	"sync"

	"maestroai/internal/config"
	"maestroai/internal/port"
)

// ProviderFactory is a function that creates a ChatClient from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.ChatClient, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// NewClient creates a ChatClient from a provider config using the registered factory.
func NewClient(cfg *config.ProviderConfig) (port.ChatClient, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
