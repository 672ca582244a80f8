package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("skyglass-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 48.85, cfg.Region.DefaultLat)
	assert.Equal(t, 2.35, cfg.Region.DefaultLon)
	assert.Equal(t, 1.0, cfg.Region.PointDelta)
	assert.Equal(t, 2.0, cfg.Region.DefaultDelta)
	assert.False(t, cfg.Region.Strict)
	assert.Equal(t, 8*time.Second, cfg.Upstream.Timeout())
	assert.True(t, cfg.Upstream.Extended)
	assert.True(t, cfg.Fallback.Always)
	assert.Equal(t, 10, cfg.Cache.SMaxAge)
	assert.Equal(t, 30, cfg.Cache.StaleWhileRevalidate)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "skyglass-test", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKYGLASS_UPSTREAM_TIMEOUT_MS", "2500")
	t.Setenv("SKYGLASS_REGION_STRICT", "true")
	t.Setenv("SKYGLASS_FALLBACK_ALWAYS", "false")
	t.Setenv("SKYGLASS_NATS_URL", "nats://localhost:4222")

	cfg, err := Load("skyglass-test")
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.Upstream.Timeout())
	assert.True(t, cfg.Region.Strict)
	assert.False(t, cfg.Fallback.Always)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("skyglass-test")
	require.NoError(t, err)

	cfg.Server.Port = 0
	cfg.Region.DefaultLat = 120
	cfg.Upstream.TimeoutMS = 20_000

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "region.default_lat")
	assert.Contains(t, err.Error(), "shorter than server.request_timeout")
}
