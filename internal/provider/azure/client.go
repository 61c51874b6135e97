package azure

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider"
)

// Build client from config.
// Priority: 1) Account key  2) SAS  3) Service Principal  4) DefaultAzureCredential.
func newClientFromConfig(c config.AzureConfig) (*azblob.Client, error) {
	if strings.TrimSpace(c.Account) == "" {
		return nil, fmt.Errorf("azure: storage account is not configured")
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", c.Account)
	}

	// 1) Account key (the provider's "API key")
	if key := strings.TrimSpace(c.AccountKey); key != "" {
		cred, err := azblob.NewSharedKeyCredential(c.Account, key)
		if err != nil {
			return nil, err
		}
		return azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
	}

	// 2) SAS
	if sasRaw := strings.TrimSpace(c.SASToken); sasRaw != "" {
		sas := strings.TrimPrefix(sasRaw, "?")
		return azblob.NewClientWithNoCredential(endpoint+"?"+sas, nil)
	}

	// 3) Service Principal
	if c.ClientID != "" && c.ClientSecret != "" && c.TenantID != "" {
		cred, err := azidentity.NewClientSecretCredential(c.TenantID, c.ClientID, c.ClientSecret, nil)
		if err != nil {
			return nil, err
		}
		return azblob.NewClient(endpoint, cred, nil)
	}

	// 4) Managed Identity / DefaultAzureCredential
	defCred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azblob.NewClient(endpoint, defCred, nil)
}

func init() {
	provider.Register("azure", func(cfg any) (provider.CloudStorage, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("azure: invalid config type")
		}
		// Missing credentials must not fail here: the client is built on
		// Initialize, so only the first network operation fails.
		return &Provider{cfg: c.Azure, container: c.Azure.Container}, nil
	})
}
