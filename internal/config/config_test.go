package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  level: warn
bot:
  token: "123:abc"
  admin_user_id: 42
admin:
  token: s3cret
limits:
  like_max_per_minute: 20
jobs:
  stats_interval: 5m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Bot.Token != "123:abc" {
		t.Fatalf("unexpected bot token: %s", cfg.Bot.Token)
	}
	if cfg.Bot.AdminUserID != 42 {
		t.Fatalf("unexpected admin user id: %d", cfg.Bot.AdminUserID)
	}
	if cfg.Admin.Token != "s3cret" {
		t.Fatalf("unexpected admin token: %s", cfg.Admin.Token)
	}
	if cfg.Limits.LikeMaxPerMinute != 20 {
		t.Fatalf("unexpected like_max_per_minute: %d", cfg.Limits.LikeMaxPerMinute)
	}
	if cfg.Jobs.StatsInterval != 5*time.Minute {
		t.Fatalf("unexpected stats interval: %s", cfg.Jobs.StatsInterval)
	}

	// untouched keys keep their defaults
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.LikeMaxPer10Sec != 12 {
		t.Fatalf("like_max_per_10sec default should stay 12, got %d", cfg.Limits.LikeMaxPer10Sec)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Env != "dev" {
		t.Fatalf("unexpected default env: %s", cfg.Env)
	}
	if cfg.Limits.LikeMaxPerMinute != 45 {
		t.Fatalf("unexpected default like_max_per_minute: %d", cfg.Limits.LikeMaxPerMinute)
	}
	if cfg.Jobs.StatsInterval != 15*time.Minute {
		t.Fatalf("unexpected default stats interval: %s", cfg.Jobs.StatsInterval)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ADMIN_USER_ID", "777")
	t.Setenv("LIKE_MAX_PER_10SEC", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Bot.AdminUserID != 777 {
		t.Fatalf("unexpected admin user id: %d", cfg.Bot.AdminUserID)
	}
	if cfg.Limits.LikeMaxPer10Sec != 3 {
		t.Fatalf("unexpected like_max_per_10sec: %d", cfg.Limits.LikeMaxPer10Sec)
	}
}

func TestLoadRejectsMalformedEnvNumber(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ADMIN_USER_ID", "not-a-number")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for malformed ADMIN_USER_ID")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"BOT_TOKEN",
		"ADMIN_USER_ID",
		"ADMIN_TOKEN",
		"LIKE_MAX_PER_MINUTE",
		"LIKE_MAX_PER_10SEC",
		"STATS_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}
