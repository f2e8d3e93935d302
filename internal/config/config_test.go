package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 67.0, cfg.ROI.TargetConversion)
	assert.Equal(t, 3000.0, cfg.ROI.Investment)
	assert.Equal(t, "+16176428741", cfg.CTA.Phone)
	assert.Equal(t, 7, cfg.Urgency.OfferDays)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
redis:
  session_ttl: 30m
roi:
  investment: 5000
rate_limit:
  per_second: 5
  burst: 10
  trusted_proxies: ["10.0.0.1"]
cta:
  contact_name: Sam
`), 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("POSTHOG_API_KEY", "phc_env")
	t.Setenv("ROI_TARGET_CONVERSION", "55")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.Redis.SessionTTL)
	assert.Equal(t, 5000.0, cfg.ROI.Investment)
	assert.Equal(t, 55.0, cfg.ROI.TargetConversion)
	assert.Equal(t, "Sam", cfg.CTA.ContactName)
	assert.Equal(t, "phc_env", cfg.Analytics.PostHogKey)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.RateLimit.TrustedProxies)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.ROI.Investment = 0
	cfg.RateLimit.Burst = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roi.investment")
	assert.Contains(t, err.Error(), "rate_limit")
}

func TestRedisAddr(t *testing.T) {
	cfg := Default()
	cfg.Redis.URI = "redis://cache:6379"
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}
