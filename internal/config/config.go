package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Store backend selection
const (
	StoreBackendLocal    = "local"
	StoreBackendPostgres = "postgres"
)

// Config represents the credential bridge configuration
type Config struct {
	// Platform credential store configuration
	StoreBackend  string `mapstructure:"store_backend"`  // local, postgres
	DatabasePath  string `mapstructure:"database_path"`  // local backend
	EncryptionKey string `mapstructure:"encryption_key"` // 16, 24 or 32 bytes; generated if empty
	PostgresDSN   string `mapstructure:"postgres_dsn"`   // postgres backend

	// Orchestrator defaults
	PreferImmediateCredentials bool   `mapstructure:"prefer_immediate_credentials"`
	FederatedClientID          string `mapstructure:"federated_client_id"`

	// Federated identity provider configuration
	FederatedIssuer     string `mapstructure:"federated_issuer"`
	FederatedSigningKey string `mapstructure:"federated_signing_key"`

	// Session cache configuration
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// API server configuration
	APIHost         string `mapstructure:"api_host"`
	APIPort         int    `mapstructure:"api_port"`
	APIReadTimeout  int    `mapstructure:"api_read_timeout"`  // seconds
	APIWriteTimeout int    `mapstructure:"api_write_timeout"` // seconds
	APIIdleTimeout  int    `mapstructure:"api_idle_timeout"`  // seconds

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		StoreBackend:               StoreBackendLocal,
		DatabasePath:               "./credential-bridge.db",
		EncryptionKey:              "",
		PostgresDSN:                "",
		PreferImmediateCredentials: false,
		FederatedClientID:          "",
		FederatedIssuer:            "https://accounts.credential-bridge.local",
		FederatedSigningKey:        "",
		RedisAddr:                  "",
		RedisPassword:              "",
		RedisDB:                    0,
		APIHost:                    "127.0.0.1",
		APIPort:                    8089,
		APIReadTimeout:             30,
		APIWriteTimeout:            30,
		APIIdleTimeout:             120,
		LogLevel:                   "info",
		LogFile:                    "",
	}
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()

	setDefaults(v, cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/credential-bridge")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".credential-bridge"))
		}
	}

	v.SetEnvPrefix("CREDBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values with viper
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("store_backend", cfg.StoreBackend)
	v.SetDefault("database_path", cfg.DatabasePath)
	v.SetDefault("encryption_key", cfg.EncryptionKey)
	v.SetDefault("postgres_dsn", cfg.PostgresDSN)
	v.SetDefault("prefer_immediate_credentials", cfg.PreferImmediateCredentials)
	v.SetDefault("federated_client_id", cfg.FederatedClientID)
	v.SetDefault("federated_issuer", cfg.FederatedIssuer)
	v.SetDefault("federated_signing_key", cfg.FederatedSigningKey)
	v.SetDefault("redis_addr", cfg.RedisAddr)
	v.SetDefault("redis_password", cfg.RedisPassword)
	v.SetDefault("redis_db", cfg.RedisDB)
	v.SetDefault("api_host", cfg.APIHost)
	v.SetDefault("api_port", cfg.APIPort)
	v.SetDefault("api_read_timeout", cfg.APIReadTimeout)
	v.SetDefault("api_write_timeout", cfg.APIWriteTimeout)
	v.SetDefault("api_idle_timeout", cfg.APIIdleTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendLocal:
		if c.DatabasePath == "" {
			return fmt.Errorf("database_path is required for the local store backend")
		}
	case StoreBackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres_dsn is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("unknown store_backend: %s", c.StoreBackend)
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535, got %d", c.APIPort)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}
