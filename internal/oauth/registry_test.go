package oauth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/config"
)

func TestRegistryRoutesByName(t *testing.T) {
	t.Parallel()

	cfg := config.OAuthConfig{Providers: []config.OAuthProviderConfig{
		{Name: "google", ClientID: "id-1"},
		{Name: "github", ClientID: "id-2"},
		{Name: "myspace", ClientID: "id-3"},
	}}

	registry := NewRegistry(cfg, "https://app.example.com", zap.NewNop())

	google, ok := registry.FindByName("google")
	require.True(t, ok)
	require.Equal(t, "google", google.Name())

	_, ok = registry.FindByName("github")
	require.True(t, ok)

	// Unknown providers are skipped at construction.
	_, ok = registry.FindByName("myspace")
	require.False(t, ok)
	_, ok = registry.FindByName("missing")
	require.False(t, ok)
	require.Len(t, registry.Names(), 2)
}
