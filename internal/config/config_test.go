package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SNAPSHOT_BACKEND", "")
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_OPERATOR_PASSWORD_HASH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Snapshot.Backend != SnapshotNone {
		t.Fatalf("backend = %q", cfg.Snapshot.Backend)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", cfg.App.Addr())
	}
	if cfg.Auth.Enabled() {
		t.Fatalf("auth should be disabled without a password hash")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desk.env")
	content := "SNAPSHOT_BACKEND=redis\nREDIS_SNAPSHOT_KEY=desk:test\nHTTP_REQUEST_TIMEOUT_SECONDS=5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set.
	for _, key := range []string{"SNAPSHOT_BACKEND", "REDIS_SNAPSHOT_KEY", "HTTP_REQUEST_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Snapshot.Backend != SnapshotRedis || cfg.Redis.Key != "desk:test" {
		t.Fatalf("unexpected snapshot config %+v %+v", cfg.Snapshot, cfg.Redis)
	}
	if cfg.App.RequestTimeout() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.App.RequestTimeout())
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SNAPSHOT_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SNAPSHOT_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DSN")
	}
}

func TestLoadAuthRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SNAPSHOT_BACKEND", "")
	t.Setenv("AUTH_OPERATOR_PASSWORD_HASH", "$2a$12$abcdefghijklmnopqrstuv")

	for _, secret := range []string{"", defaultJWTSecret} {
		t.Setenv("AUTH_JWT_SECRET", secret)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for secret %q", secret)
		}
	}

	t.Setenv("AUTH_JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Auth.Enabled() {
		t.Fatalf("auth should be enabled")
	}
}
