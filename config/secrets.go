package config

import (
	"context"
	"fmt"
	"os"
)

// SecretStore retrieves sensitive values (API keys, DSNs) from an
// external source so they can stay out of config files.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetWithDefault(ctx context.Context, key, fallback string) string
}

// EnvironmentSecretStore reads secrets from environment variables.
type EnvironmentSecretStore struct{}

// NewEnvironmentSecretStore returns a store backed by the process environment.
func NewEnvironmentSecretStore() *EnvironmentSecretStore {
	return &EnvironmentSecretStore{}
}

// Get returns the value of key or an error if it is unset or empty.
func (s *EnvironmentSecretStore) Get(_ context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("secret %s is not set", key)
	}
	return value, nil
}

// GetWithDefault returns the value of key, or fallback if unset.
func (s *EnvironmentSecretStore) GetWithDefault(_ context.Context, key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// LoadSecretsFromEnv fills in secrets that are kept out of config files.
// Values already present (e.g. from env tag overlays) are not replaced.
func (c *Config) LoadSecretsFromEnv(ctx context.Context) error {
	store := NewEnvironmentSecretStore()

	if c.Storage.Adapter == "sql" && c.Storage.SQL.DSN == "" {
		dsn, err := store.Get(ctx, "SKILLSPRINT_STORAGE_SQL_DSN")
		if err != nil {
			return fmt.Errorf("sql storage selected: %w", err)
		}
		c.Storage.SQL.DSN = dsn
	}

	if c.Storage.Adapter == "redis" && c.Storage.Redis.Password == "" {
		c.Storage.Redis.Password = store.GetWithDefault(ctx, "SKILLSPRINT_STORAGE_REDIS_PASSWORD", "")
	}

	if c.Content.Enabled && c.Content.APIKey == "" {
		// GROQ_API_KEY matches the upstream provider's conventional name.
		c.Content.APIKey = store.GetWithDefault(ctx, "GROQ_API_KEY", "")
	}

	return nil
}
