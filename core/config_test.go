package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_KEY", "env-key")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SESSION_MAX_AGE", "120")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != "8081" || cfg.SessionKey != "env-key" || !cfg.CookieSecure || cfg.SessionMaxAge != 120 {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.test" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9000\"\ncookie_samesite: Strict\nsession_max_age: 45\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_KEY", "env-key")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	// File wins over env for the fields it names...
	if cfg.Port != "9000" || cfg.CookieSameSite != "Strict" || cfg.SessionMaxAge != 45 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	// ...and everything it omits keeps the env/default value.
	if cfg.SessionKey != "env-key" {
		t.Fatalf("SessionKey = %q, want env-key", cfg.SessionKey)
	}
}

func TestLoadBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not: valid"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unparsable config file")
	}
}
