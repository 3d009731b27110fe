package providers

import (
	"context"
	"fmt"
)

// ProviderType identifies a configuration source.
type ProviderType string

const (
	ProviderTypeEnvFile       ProviderType = "env-file"
	ProviderTypeAzureKeyVault ProviderType = "azure-keyvault"
)

// ConfigProvider is the interface every configuration source implements.
type ConfigProvider interface {
	// Get retrieves a configuration value by key.
	Get(ctx context.Context, key string) (string, error)

	// GetWithDefault retrieves a configuration value, falling back to a default.
	GetWithDefault(ctx context.Context, key, defaultValue string) (string, error)
}

// ProviderConfig holds the settings needed to construct a provider.
type ProviderConfig struct {
	ProviderType ProviderType           `json:"provider_type"`
	Config       map[string]interface{} `json:"config"`
}

// NewProvider constructs a configuration provider of the given type.
func NewProvider(cfg ProviderConfig) (ConfigProvider, error) {
	switch cfg.ProviderType {
	case ProviderTypeEnvFile:
		return NewEnvFileProvider(cfg)
	case ProviderTypeAzureKeyVault:
		return NewAzureKeyVaultProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported config provider type: %s", cfg.ProviderType)
	}
}
