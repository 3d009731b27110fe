package providers

import (
	"context"
	"fmt"
	"os"
)

// EnvFileProvider reads configuration from process environment variables.
type EnvFileProvider struct{}

// NewEnvFileProvider creates a new environment variable provider.
func NewEnvFileProvider(_ ProviderConfig) (ConfigProvider, error) {
	return &EnvFileProvider{}, nil
}

// Get retrieves a configuration value from the environment.
func (p *EnvFileProvider) Get(ctx context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("environment variable %q not set", key)
	}
	return value, nil
}

// GetWithDefault retrieves a configuration value with a fallback.
func (p *EnvFileProvider) GetWithDefault(ctx context.Context, key, defaultValue string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return defaultValue, nil
}
