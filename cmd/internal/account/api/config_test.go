package accountapi

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("MURMUR_ACCOUNT_LOGIN_IP_MAX", "")
	t.Setenv("MURMUR_ACCOUNT_MAX_BODY_BYTES", "")

	cfg := LoadConfigFromEnv()
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Override(t *testing.T) {
	t.Setenv("MURMUR_ACCOUNT_TRUST_PROXY", "true")
	t.Setenv("MURMUR_ACCOUNT_LOGIN_IP_MAX", "7")
	t.Setenv("MURMUR_ACCOUNT_LOGIN_IP_WINDOW", "90s")
	t.Setenv("MURMUR_ACCOUNT_LOCKOUT_SEVERE_DURATION", "3h")
	t.Setenv("MURMUR_ACCOUNT_MAX_BODY_BYTES", "-5")

	cfg := LoadConfigFromEnv()
	if !cfg.TrustProxy || cfg.LoginIPMax != 7 || cfg.LoginIPWindow != 90*time.Second {
		t.Fatalf("override failed: %+v", cfg)
	}
	if cfg.MaxBodyBytes != DefaultConfig().MaxBodyBytes {
		t.Fatalf("invalid value should fall back to default, got %d", cfg.MaxBodyBytes)
	}
	if cfg.horizon() != 3*time.Hour {
		t.Fatalf("unexpected horizon %v", cfg.horizon())
	}
}

func TestLockoutTiers_SkipsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LockoutLongThreshold = 0

	tiers := cfg.lockoutTiers()
	if len(tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(tiers))
	}
	if tiers[0].Threshold != cfg.LockoutSevereThreshold {
		t.Fatalf("expected severe tier first")
	}
}
