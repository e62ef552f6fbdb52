package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_NAME", "PAGE_CEILING", "WAIT_TIMEOUT_SEC", "HEADLESS", "RAW_CSV_PATH"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	if cfg.DBHost != "localhost" || cfg.DBPort != "5432" || cfg.DBName != "postgres" {
		t.Errorf("db defaults: got %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if cfg.PageCeiling != 999 {
		t.Errorf("PageCeiling: got %d, want 999", cfg.PageCeiling)
	}
	if cfg.WaitTimeout != 10*time.Second {
		t.Errorf("WaitTimeout: got %v, want 10s", cfg.WaitTimeout)
	}
	if cfg.SearchSettle != 2*time.Second || cfg.PageSettle != 5*time.Second {
		t.Errorf("settle delays: got %v / %v", cfg.SearchSettle, cfg.PageSettle)
	}
	if cfg.Headless {
		t.Error("Headless should default to false")
	}
	if cfg.RawCSVPath != "" {
		t.Errorf("RawCSVPath: got %q, want empty", cfg.RawCSVPath)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PAGE_CEILING", "3")
	t.Setenv("PAGE_SETTLE_SEC", "1")
	t.Setenv("HEADLESS", "true")

	cfg := FromEnv()

	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost: got %q", cfg.DBHost)
	}
	if cfg.PageCeiling != 3 {
		t.Errorf("PageCeiling: got %d, want 3", cfg.PageCeiling)
	}
	if cfg.PageSettle != time.Second {
		t.Errorf("PageSettle: got %v, want 1s", cfg.PageSettle)
	}
	if !cfg.Headless {
		t.Error("Headless should be true")
	}
}

func TestFromEnvIgnoresMalformedInt(t *testing.T) {
	t.Setenv("PAGE_CEILING", "lots")

	if got := FromEnv().PageCeiling; got != 999 {
		t.Errorf("PageCeiling: got %d, want fallback 999", got)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p", DBName: "d", DBSSLMode: "disable",
	}
	want := "host=h port=1 user=u password=p dbname=d sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
