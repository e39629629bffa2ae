package parser

import (
	"fmt"

	"cverve/internal/config"
	"cverve/internal/port"
)

// ProviderFactory is a function that creates a ClaimParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.ClaimParser, error)

// registry of parser provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a ClaimParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.ClaimParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds a FallbackParser over the given providers in order.
// A single provider is still wrapped so cooldowns and the completeness check apply.
func NewChain(cfgs []*config.ParserProviderConfig) (*FallbackParser, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no parser providers configured")
	}
	parsers := make([]port.ClaimParser, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := NewParser(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s parser: %w", cfg.Provider, err)
		}
		parsers = append(parsers, p)
		names = append(names, cfg.Provider)
	}
	return NewFallbackParser(parsers, names), nil
}
