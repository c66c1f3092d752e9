package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"credential-bridge/internal/config"
	"credential-bridge/internal/database"
	"credential-bridge/internal/identity"
	"credential-bridge/internal/logging"
	"credential-bridge/internal/manager"
	"credential-bridge/internal/platform"
	"credential-bridge/internal/platform/localstore"
	"credential-bridge/internal/platform/pgstore"
	"credential-bridge/internal/providers/federated"
	"credential-bridge/internal/providers/passkey"
	"credential-bridge/internal/providers/password"
	"credential-bridge/internal/session"
)

// buildManager wires the platform store, providers, and session cache into
// an orchestrator according to the configuration. The returned closer
// releases backend connections.
func buildManager(cfg *config.Config, logger *logrus.Logger) (*manager.Manager, func(), error) {
	var store platform.Store
	var closers []func()

	switch cfg.StoreBackend {
	case config.StoreBackendLocal:
		key, err := loadEncryptionKey(cfg)
		if err != nil {
			return nil, nil, err
		}
		db, err := database.NewDB(database.Config{
			DatabasePath:  cfg.DatabasePath,
			EncryptionKey: key,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open credential database: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		store = localstore.New(db, logging.NewComponentLogger(logger, "localstore"))

	case config.StoreBackendPostgres:
		pg, err := pgstore.New(cfg.PostgresDSN, logging.NewComponentLogger(logger, "pgstore"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres store: %w", err)
		}
		closers = append(closers, func() { pg.Close() })
		store = pg

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}

	signingKey := []byte(cfg.FederatedSigningKey)
	if len(signingKey) == 0 {
		signingKey = make([]byte, 32)
		if _, err := rand.Read(signingKey); err != nil {
			return nil, nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}

	issuer := identity.NewLocalIssuer(
		cfg.FederatedIssuer,
		signingKey,
		identity.Profile{
			SubjectID:   "dev-user@credential-bridge.local",
			DisplayName: "Development User",
			GivenName:   "Development",
			FamilyName:  "User",
		},
		logging.NewComponentLogger(logger, "identity"),
	)

	var sessions session.Store
	if cfg.RedisAddr != "" {
		redisStore, err := session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to session cache: %w", err)
		}
		closers = append(closers, func() { redisStore.Close() })
		sessions = redisStore
	} else {
		sessions = session.NewMemoryStore()
	}

	m := manager.New(
		store,
		password.New(store, logging.NewProviderLogger(logger, "password")),
		passkey.New(store, logging.NewProviderLogger(logger, "passkey")),
		federated.New(issuer, store, logging.NewProviderLogger(logger, "federated")),
		sessions,
		logger,
	)

	closer := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	return m, closer, nil
}

// loadEncryptionKey returns the configured key or loads/creates a key file
// next to the database
func loadEncryptionKey(cfg *config.Config) ([]byte, error) {
	if cfg.EncryptionKey != "" {
		key := []byte(cfg.EncryptionKey)
		switch len(key) {
		case 16, 24, 32:
			return key, nil
		}
		return nil, fmt.Errorf("encryption_key must be 16, 24 or 32 bytes, got %d", len(key))
	}

	keyPath := filepath.Join(filepath.Dir(cfg.DatabasePath), ".credential-bridge.key")
	if key, err := os.ReadFile(keyPath); err == nil {
		if len(key) != 32 {
			return nil, fmt.Errorf("key file %s is corrupt", keyPath)
		}
		return key, nil
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	return key, nil
}
