package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_MODE", "DB_DRIVER", "DB_DSN", "UPLOAD_DIR"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "5000" {
		t.Errorf("default port = %q, want 5000", cfg.Port)
	}
	if cfg.LogMode != "development" {
		t.Errorf("default log mode = %q", cfg.LogMode)
	}
	if cfg.DBDriver != "mysql" {
		t.Errorf("default driver = %q", cfg.DBDriver)
	}
	if cfg.UploadDir == "" {
		t.Error("upload dir should default to the temp dir")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("UPLOAD_DIR", "/var/uploads")

	cfg := Load()
	if cfg.Port != "8080" || cfg.DBDriver != "sqlite" || cfg.DBDSN != "file:test.db" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.GeminiAPIKey != "g-key" {
		t.Errorf("api key not read: %q", cfg.GeminiAPIKey)
	}
	if cfg.UploadDir != "/var/uploads" {
		t.Errorf("upload dir not applied: %q", cfg.UploadDir)
	}
}
