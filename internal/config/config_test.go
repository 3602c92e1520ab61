package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigs(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestMustLoad_Defaults(t *testing.T) {
	dir := writeConfigs(t, "s3:\n  bucket: 'chat'\n  region: 'eu-central-1'\n", "jwt_key: 'k'\n")

	cfg := MustLoad(dir)

	if cfg.Public.Limits.MaxChatFileBytes != 10<<20 {
		t.Errorf("expected 10MB chat file default, got %d", cfg.Public.Limits.MaxChatFileBytes)
	}
	if cfg.Public.Limits.MaxPhotoFileBytes != 5<<20 {
		t.Errorf("expected 5MB photo file default, got %d", cfg.Public.Limits.MaxPhotoFileBytes)
	}
	if cfg.Public.Limits.UploadUrlTTL != 24*time.Hour {
		t.Errorf("expected 24h upload url ttl, got %v", cfg.Public.Limits.UploadUrlTTL)
	}
	if cfg.Public.Limits.PreviewUrlTTL != time.Hour {
		t.Errorf("expected 1h preview url ttl, got %v", cfg.Public.Limits.PreviewUrlTTL)
	}
	if cfg.Public.Http.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Public.Http.Port)
	}
	if cfg.JwtKey() != "k" {
		t.Errorf("unexpected jwt key %q", cfg.JwtKey())
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	dir := t.TempDir() // no files at all

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing config file, got none")
		}
	}()

	_ = MustLoad(dir)
}

func TestMustLoad_ExplicitLimitsWin(t *testing.T) {
	public := "limits:\n  max_chat_file_bytes: 1048576\n  max_chat_batch: 3\n"
	dir := writeConfigs(t, public, "jwt_key: 'k'\n")

	cfg := MustLoad(dir)

	if cfg.Public.Limits.MaxChatFileBytes != 1<<20 {
		t.Errorf("explicit limit overridden: got %d", cfg.Public.Limits.MaxChatFileBytes)
	}
	if cfg.Public.Limits.MaxChatBatch != 3 {
		t.Errorf("explicit batch overridden: got %d", cfg.Public.Limits.MaxChatBatch)
	}
}
