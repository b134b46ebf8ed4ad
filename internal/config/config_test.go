package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "portgraph.yaml", `
listen: ":9090"
store:
  kind: redis
  redis_addr: localhost:6379
  prefix: "pg:"
  ttl: 1h
log:
  level: debug
  format: json
metrics: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "redis", cfg.Store.Kind)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics)
	// Unset keys keep their defaults.
	assert.Equal(t, ".portgraph/graphs", cfg.Store.Dir)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "portgraph.json", `{"listen": "0.0.0.0:8081", "store": {"kind": "file", "dir": "/tmp/graphs", "format": "yaml"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Kind)
	assert.Equal(t, "yaml", cfg.Store.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"Unknown Store", "store:\n  kind: sqlite\n", "Store.Kind"},
		{"Redis Without Address", "store:\n  kind: redis\n", "Store.RedisAddr"},
		{"Bad Listen", "listen: nowhere\n", "Listen"},
		{"Bad Log Format", "log:\n  format: xml\n", "Log.Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(writeFile(t, "broken.yaml", "listen: [\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
