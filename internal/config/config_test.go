package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REFERRAL_TIMEOUT_HOURS", "")
	t.Setenv("REFERRAL_COMMISSION_AMOUNT", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Referral.Timeout(); got != 36*time.Hour {
		t.Fatalf("expected 36h timeout, got %s", got)
	}
	if cfg.Referral.CommissionAmount.StringFixed(2) != "75.00" {
		t.Fatalf("unexpected commission default %s", cfg.Referral.CommissionAmount)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %s", cfg.App.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REFERRAL_TIMEOUT_HOURS", "12")
	t.Setenv("REFERRAL_SWEEP_INTERVAL_SECONDS", "0")
	t.Setenv("REFERRAL_COMMISSION_AMOUNT", "12.5")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Referral.Timeout() != 12*time.Hour {
		t.Fatalf("unexpected timeout %s", cfg.Referral.Timeout())
	}
	if cfg.Referral.SweepInterval() != 0 {
		t.Fatal("zero interval must disable the loop")
	}
	if cfg.Referral.CommissionAmount.StringFixed(2) != "12.50" {
		t.Fatalf("unexpected commission %s", cfg.Referral.CommissionAmount)
	}
	if cfg.Postgres.MaxConns != 10 {
		t.Fatalf("invalid int must fall back, got %d", cfg.Postgres.MaxConns)
	}
}

func TestLoadRejectsBadCommission(t *testing.T) {
	t.Setenv("REFERRAL_COMMISSION_AMOUNT", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected negative commission to be rejected")
	}
	t.Setenv("REFERRAL_COMMISSION_AMOUNT", "abc")
	if _, err := Load(); err == nil {
		t.Fatal("expected malformed commission to be rejected")
	}
}
