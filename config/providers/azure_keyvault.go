package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// AzureKeyVaultProvider resolves configuration values from Azure Key Vault.
// Secrets are cached for a short window to keep vault round-trips off the
// request path.
type AzureKeyVaultProvider struct {
	client      *azsecrets.Client
	vaultURL    string
	cache       map[string]string
	cacheMutex  sync.RWMutex
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

// NewAzureKeyVaultProvider creates a Key Vault backed provider. The vault URL
// comes from the provider config; authentication uses the default Azure
// credential chain (managed identity in deployed environments).
func NewAzureKeyVaultProvider(cfg ProviderConfig) (ConfigProvider, error) {
	vaultURL, ok := cfg.Config["vault_url"].(string)
	if !ok || vaultURL == "" {
		return nil, fmt.Errorf("vault_url is required for the azure-keyvault provider")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	return &AzureKeyVaultProvider{
		client:   client,
		vaultURL: vaultURL,
		cache:    make(map[string]string),
		cacheTTL: 5 * time.Minute,
	}, nil
}

// Get retrieves a secret from Key Vault. Underscores in the key are mapped to
// hyphens because Key Vault secret names do not allow underscores.
func (p *AzureKeyVaultProvider) Get(ctx context.Context, key string) (string, error) {
	p.cacheMutex.RLock()
	if value, ok := p.cache[key]; ok && time.Now().Before(p.cacheExpiry) {
		p.cacheMutex.RUnlock()
		return value, nil
	}
	p.cacheMutex.RUnlock()

	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	if value, ok := p.cache[key]; ok && time.Now().Before(p.cacheExpiry) {
		return value, nil
	}

	secretName := strings.ReplaceAll(key, "_", "-")

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := p.client.GetSecret(fetchCtx, secretName, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", secretName, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %q has no value", secretName)
	}

	p.cache[key] = *resp.Value
	p.cacheExpiry = time.Now().Add(p.cacheTTL)

	return *resp.Value, nil
}

// GetWithDefault retrieves a secret, returning the default when missing.
func (p *AzureKeyVaultProvider) GetWithDefault(ctx context.Context, key, defaultValue string) (string, error) {
	value, err := p.Get(ctx, key)
	if err != nil {
		return defaultValue, nil
	}
	return value, nil
}
