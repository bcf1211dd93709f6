package oauth

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/config"
)

// Registry routes provider names to their adapters. It is built once at
// startup with the public base URL and is immutable afterwards.
type Registry struct {
	adapters map[string]*Adapter
}

// NewRegistry builds adapters for every configured provider. Providers
// with an unknown name are skipped with a warning.
func NewRegistry(cfg config.OAuthConfig, baseURL string, logger *zap.Logger) *Registry {
	client := &http.Client{Timeout: 10 * time.Second}

	adapters := make(map[string]*Adapter, len(cfg.Providers))
	for _, provider := range cfg.Providers {
		normalize, ok := normalizerFor(provider.Name)
		if !ok {
			logger.Warn("unknown oauth provider; skipping", zap.String("provider", provider.Name))
			continue
		}
		adapters[provider.Name] = newAdapter(provider, baseURL, client, normalize)
		logger.Info("registered oauth provider", zap.String("provider", provider.Name))
	}
	return &Registry{adapters: adapters}
}

func normalizerFor(name string) (normalizeFunc, bool) {
	switch name {
	case "google":
		return normalizeGoogle, true
	case "github":
		return normalizeGithub, true
	}
	return nil, false
}

// FindByName returns the adapter for name, or (nil, false).
func (r *Registry) FindByName(name string) (*Adapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
