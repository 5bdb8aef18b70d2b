// Package factory wires the concrete platform adapters behind the
// provider port. It is built once at startup from configuration and
// injected into services; there is no package-level registry.
package factory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/crm"
)

// Factory hands out the provider registered for a platform code
type Factory struct {
	providers map[crm.PlatformCode]crm.CRMProvider
}

var _ crm.ProviderFactory = (*Factory)(nil)

// New creates a factory over the given providers. Passing the same
// platform twice keeps the last one.
func New(providers ...crm.CRMProvider) *Factory {
	f := &Factory{providers: make(map[crm.PlatformCode]crm.CRMProvider, len(providers))}
	for _, p := range providers {
		f.providers[p.PlatformCode()] = p
	}
	return f
}

// Provider returns the CRMProvider for the tenant's platform
func (f *Factory) Provider(ctx context.Context, tenantID uuid.UUID, code crm.PlatformCode) (crm.CRMProvider, error) {
	if !code.IsValid() {
		return nil, fmt.Errorf("%w: %q", crm.ErrUnknownPlatform, code)
	}
	p, ok := f.providers[code]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter registered for %s", crm.ErrProviderNotConfigured, code)
	}
	return p, nil
}

// Platforms lists the platform codes with a registered adapter
func (f *Factory) Platforms() []crm.PlatformCode {
	codes := make([]crm.PlatformCode, 0, len(f.providers))
	for code := range f.providers {
		codes = append(codes, code)
	}
	return codes
}
