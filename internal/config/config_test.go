package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, StoreBackendLocal, cfg.StoreBackend)
	assert.Equal(t, "./credential-bridge.db", cfg.DatabasePath)
	assert.Equal(t, 8089, cfg.APIPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.PreferImmediateCredentials)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreBackendLocal, cfg.StoreBackend)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
store_backend: local
database_path: /tmp/creds.db
federated_client_id: client-123
prefer_immediate_credentials: true
api_port: 9090
log_level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/creds.db", cfg.DatabasePath)
	assert.Equal(t, "client-123", cfg.FederatedClientID)
	assert.True(t, cfg.PreferImmediateCredentials)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.DatabasePath = "" },
			wantErr: "database_path",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.StoreBackend = StoreBackendPostgres },
			wantErr: "postgres_dsn",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.StoreBackend = "etcd" },
			wantErr: "unknown store_backend",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.APIPort = 0 },
			wantErr: "api_port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
