package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vaultgate/internal/model"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	registerDefaults(v)
	configureEnv(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VAULTGATE_GATE_REQUESTS_PER_HOUR", "120")
	t.Setenv("VAULTGATE_GATE_PENDING_TTL", "2h")
	t.Setenv("VAULTGATE_LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, 120.0, cfg.Gate.RequestsPerHour)
	assert.Equal(t, 2*time.Hour, cfg.Gate.PendingTTL)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoadConfig_FileAndValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
decision:
  threat_weight: 0.5
  geo_weight: 0.3
  behavior_weight: 0.2
  approve_threshold: 40
signals:
  rapid_access_span: 2m
`), 0o600))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Decision.ThreatWeight)
	assert.Equal(t, 40.0, cfg.Decision.ApproveThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Signals.RapidAccessSpan)
	assert.Equal(t, 10, cfg.Signals.ThreatWindow, "unset keys keep their defaults")

	t.Setenv("VAULTGATE_DECISION_GEO_WEIGHT", "0.9")
	_, err = loadConfig(v)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vaultgate", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("# vaultgate configuration")))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Decision, cfg.Decision)
	assert.Equal(t, model.DefaultConfig().Gate, cfg.Gate)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"far away":      "far-away",
		"a/b\\c:d":      "a_b_c_d",
		"":              "_",
		"..":            "_..",
		"summary":       "_summary",
		" vault <7> ? ": "vault-_7_-_",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), "sanitizeFilename(%q)", in)
	}
}
