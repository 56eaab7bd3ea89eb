package autoblog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autoblog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "AutoBlog" || cfg.Addr != ":8501" {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.DatabasePath != "data/blogs.db" || cfg.OutputDir != "generated_blogs" || cfg.ProcessedPath != "processed_trends.json" {
		t.Errorf("paths: %+v", cfg)
	}
	if cfg.TrendSource != SourceNewsAPI || cfg.NewsCountry != "us" {
		t.Errorf("trend source: %+v", cfg)
	}
	if cfg.ModelCacheTTL != 10*time.Minute || cfg.RequestTimeout != 30*time.Second {
		t.Errorf("durations: %+v", cfg)
	}
	if cfg.ProcessedRetention != 0 {
		t.Error("processed records should be kept forever by default")
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, `
site_name: Trend Desk
output_dir: out
trend_source: feed
feed_url: https://example.com/rss
provider: claude
processed_retention: 720h
cookie_secure: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Trend Desk" || cfg.OutputDir != "out" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.TrendSource != SourceFeed || cfg.FeedURL != "https://example.com/rss" {
		t.Errorf("source = %q %q", cfg.TrendSource, cfg.FeedURL)
	}
	if cfg.ProcessedRetention != 720*time.Hour || !cfg.CookieSecure || cfg.Provider != "claude" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "site_name: From File\naddr: \":9000\"\n")
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "From Env" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 5*time.Second || !cfg.CookieSecure {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigBadValues(t *testing.T) {
	t.Setenv("MODEL_CACHE_TTL", "soon")
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for bad duration")
	}

	t.Setenv("MODEL_CACHE_TTL", "")
	t.Setenv("COOKIE_SECURE", "maybe")
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for bad bool")
	}

	t.Setenv("COOKIE_SECURE", "")
	if _, err := LoadConfig(writeConfig(t, "site_name: [")); err == nil {
		t.Error("expected error for bad yaml")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigAdminPasswordFile(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(secret, []byte("hunter2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ADMIN_PASSWORD_FILE", secret)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AdminPassword != "hunter2" {
		t.Errorf("AdminPassword = %q", cfg.AdminPassword)
	}

	t.Setenv("ADMIN_PASSWORD", "direct")
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AdminPassword != "direct" {
		t.Errorf("direct password should win, got %q", cfg.AdminPassword)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	os.WriteFile(empty, []byte("  \n"), 0o600)
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_FILE", empty)
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for empty password file")
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("AUTOBLOG_TEST_VAR", "")
	if got := EnvOr("AUTOBLOG_TEST_VAR", "fallback"); got != "fallback" {
		t.Errorf("EnvOr = %q", got)
	}
	t.Setenv("AUTOBLOG_TEST_VAR", "set")
	if got := EnvOr("AUTOBLOG_TEST_VAR", "fallback"); got != "set" {
		t.Errorf("EnvOr = %q", got)
	}
}
