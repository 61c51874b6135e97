package config

import (
	"errors"
	"os"
	"strings"
)

type Config struct {
	Provider string

	Auth AuthConfig

	// Document store
	StorePath string

	// Backup / restore I/O
	BackupFileSuffix string
	RestoreSource    string
	RestoreOverwrite bool

	Azure AzureConfig
}

type AzureConfig struct {
	Account   string
	Container string
	Endpoint  string

	// API key ("shared key") auth.
	AccountKey string

	SASToken string

	ClientID     string
	ClientSecret string
	TenantID     string
}

type AuthConfig struct {
	Method    string // "static" or "jwt"
	UserID    string // only if Method == static
	IDToken   string // only if Method == jwt
	JWTSecret string // HMAC secret used to verify IDToken
}

// Load reads config from environment variables, applies defaults and
// validates. Cloud credentials may be absent: initialization must not fail
// on missing credentials, the first network call does.
func Load() (Config, error) {
	get := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return def
	}

	parseBool := func(key string, def bool) bool {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "y", "on":
				return true
			case "0", "false", "no", "n", "off":
				return false
			}
		}
		return def
	}

	// -------------------------
	// Auth parsing (fallbacks)
	// -------------------------
	method := strings.ToLower(strings.TrimSpace(get("SYNC_AUTH_METHOD", "")))
	userID := strings.TrimSpace(get("SYNC_USER_ID", ""))
	idToken := strings.TrimSpace(get("SYNC_ID_TOKEN", ""))

	if method == "" {
		switch {
		case idToken != "":
			method = "jwt"
		default:
			// A missing user id is surfaced at operation time as an
			// authentication failure, not at load time.
			method = "static"
		}
	}

	auth := AuthConfig{
		Method:    method,
		UserID:    userID,
		IDToken:   idToken,
		JWTSecret: strings.TrimSpace(get("SYNC_JWT_SECRET", "")),
	}

	cfg := Config{
		Provider: strings.ToLower(get("SYNC_PROVIDER", "azure")),
		Auth:     auth,

		StorePath: get("SYNC_STORE_PATH", "./echoes-learn.db"),

		BackupFileSuffix: get("BACKUP_FILE_SUFFIX", ""),
		RestoreSource:    get("RESTORE_SOURCE", ""),
		RestoreOverwrite: parseBool("RESTORE_OVERWRITE", false),

		Azure: AzureConfig{
			Account:      get("AZURE_STORAGE_ACCOUNT", ""),
			Container:    get("AZURE_STORAGE_CONTAINER", ""),
			Endpoint:     get("AZURE_BLOB_ENDPOINT", ""),
			AccountKey:   get("AZURE_STORAGE_KEY", ""),
			SASToken:     get("AZURE_STORAGE_SAS", ""),
			ClientID:     get("AZURE_CLIENT_ID", ""),
			ClientSecret: get("AZURE_CLIENT_SECRET", ""),
			TenantID:     get("AZURE_TENANT_ID", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks only what must hold before any operation starts.
// Provider credentials are deliberately not required here.
func (c *Config) validate() error {
	switch c.Provider {
	case "azure":
	default:
		return errors.New("unsupported provider: " + c.Provider)
	}
	switch c.Auth.Method {
	case "static", "jwt":
	default:
		return errors.New("unsupported auth method: " + c.Auth.Method)
	}
	if strings.TrimSpace(c.StorePath) == "" {
		return errors.New("SYNC_STORE_PATH must not be empty")
	}
	return nil
}
