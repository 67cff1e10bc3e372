package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-station-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "Station Dashboard", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 24*time.Hour, c.GetSessionTTL())
	require.Equal(t, 15*time.Minute, c.GetResetCodeTTL())
	require.Equal(t, 10, c.GetStationsPageSize())
	require.Equal(t, config.StorageBackendFile, c.GetStorageBackend())
	require.True(t, c.GetMockAPIEnabled())
	require.Equal(t, "http://localhost:8080/mockapi", c.GetStationsAPIURL())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", ":9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("STATIONS_API_URL", "https://api.example.com")
	t.Setenv("STATIONS_PAGE_SIZE", "25")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "PRODUCTION", c.GetEnv())
	require.Equal(t, 2*time.Hour, c.GetSessionTTL())
	require.Equal(t, "https://api.example.com", c.GetStationsAPIURL())
	require.False(t, c.GetMockAPIEnabled())
	require.Equal(t, 25, c.GetStationsPageSize())
	require.Equal(t, config.StorageBackendRedis, c.GetStorageBackend())

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
}

func TestNew_MockAPIExplicitlyEnabled(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STATIONS_API_URL", "https://api.example.com")
	t.Setenv("STATIONS_MOCK_API", "true")

	c, err := config.New()
	require.NoError(t, err)
	require.True(t, c.GetMockAPIEnabled())
	require.Equal(t, "https://api.example.com", c.GetStationsAPIURL())
}
