package config

import (
	"os"
	"testing"
)

// clearSyncEnv unsets every variable Load reads. t.Setenv registers the
// restore; the explicit Unsetenv makes the variable truly absent, since
// set-but-empty is not the same as unset for plain get().
func clearSyncEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SYNC_PROVIDER", "SYNC_AUTH_METHOD", "SYNC_USER_ID", "SYNC_ID_TOKEN",
		"SYNC_JWT_SECRET", "SYNC_STORE_PATH", "BACKUP_FILE_SUFFIX",
		"RESTORE_SOURCE", "RESTORE_OVERWRITE",
		"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_CONTAINER", "AZURE_STORAGE_KEY",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearSyncEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorePath != "./echoes-learn.db" {
		t.Fatalf("default store path: %q", cfg.StorePath)
	}
	if cfg.Provider != "azure" {
		t.Fatalf("default provider: %q", cfg.Provider)
	}
	if cfg.Auth.Method != "static" {
		t.Fatalf("default auth method: %q", cfg.Auth.Method)
	}
	if cfg.RestoreOverwrite {
		t.Fatal("overwrite must default to false")
	}
}

// Missing cloud credentials must not fail Load; only the first network
// call may fail.
func TestLoad_ToleratesMissingCloudCredentials(t *testing.T) {
	clearSyncEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load must tolerate missing credentials: %v", err)
	}
	if cfg.Azure.Account != "" || cfg.Azure.AccountKey != "" {
		t.Fatalf("unexpected credentials: %+v", cfg.Azure)
	}
}

func TestLoad_InfersJWTMethodFromToken(t *testing.T) {
	clearSyncEnv(t)
	t.Setenv("SYNC_ID_TOKEN", "header.payload.sig")
	t.Setenv("SYNC_JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.Method != "jwt" {
		t.Fatalf("want jwt method inferred, got %q", cfg.Auth.Method)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	clearSyncEnv(t)
	t.Setenv("SYNC_PROVIDER", "gopherdrive")

	if _, err := Load(); err == nil {
		t.Fatal("want error for unknown provider")
	}
}

func TestLoad_ParsesOverwriteFlag(t *testing.T) {
	clearSyncEnv(t)

	for _, v := range []string{"1", "true", "YES", "on"} {
		t.Setenv("RESTORE_OVERWRITE", v)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load with %q: %v", v, err)
		}
		if !cfg.RestoreOverwrite {
			t.Fatalf("%q should enable overwrite", v)
		}
	}
	t.Setenv("RESTORE_OVERWRITE", "off")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RestoreOverwrite {
		t.Fatal("off should disable overwrite")
	}
}
