package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"rajpharma.com/api/config/providers"
)

// Manager resolves configuration values from a primary provider with an
// env-file fallback. The primary source is selected with the CONFIG_SOURCE
// environment variable; it defaults to plain environment variables so local
// development needs no extra setup.
type Manager struct {
	source   string
	primary  providers.ConfigProvider
	fallback providers.ConfigProvider
}

// NewManager creates a configuration manager. CONFIG_SOURCE and
// CONFIG_SOURCE_CONFIG are the only keys read directly from the environment;
// they bootstrap the provider chain before the manager exists.
func NewManager() (*Manager, error) {
	source := os.Getenv("CONFIG_SOURCE")
	if source == "" {
		source = string(providers.ProviderTypeEnvFile)
	}

	var sourceConfig map[string]interface{}
	if source != string(providers.ProviderTypeEnvFile) {
		if raw := os.Getenv("CONFIG_SOURCE_CONFIG"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sourceConfig); err != nil {
				return nil, fmt.Errorf("failed to parse CONFIG_SOURCE_CONFIG: %w", err)
			}
		}
	}

	primary, err := providers.NewProvider(providers.ProviderConfig{
		ProviderType: providers.ProviderType(source),
		Config:       sourceConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create primary config provider: %w", err)
	}

	fallback, err := providers.NewProvider(providers.ProviderConfig{
		ProviderType: providers.ProviderTypeEnvFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback config provider: %w", err)
	}

	return &Manager{
		source:   source,
		primary:  primary,
		fallback: fallback,
	}, nil
}

// Get retrieves a configuration value, trying the primary provider first and
// the env-file fallback second. Returns "" when neither has the key.
func (m *Manager) Get(key string) string {
	ctx := context.Background()

	value, err := m.primary.Get(ctx, key)
	if err == nil && value != "" {
		return value
	}

	// When the primary already is env-file the fallback would repeat the
	// same lookup.
	if m.source == string(providers.ProviderTypeEnvFile) {
		return ""
	}

	value, err = m.fallback.Get(ctx, key)
	if err != nil {
		return ""
	}
	return value
}

// GetWithDefault retrieves a configuration value with a default.
func (m *Manager) GetWithDefault(key, defaultValue string) string {
	if value := m.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// Source returns the name of the active primary provider.
func (m *Manager) Source() string {
	return m.source
}
