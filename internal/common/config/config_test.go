package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Server.Name != "parking-service" {
		t.Fatalf("unexpected server name: %s", cfg.Server.Name)
	}
	if cfg.Database.LockWaitSeconds <= 0 {
		t.Fatalf("expected bounded lock wait, got %d", cfg.Database.LockWaitSeconds)
	}
	if cfg.Booking.RequireApproval {
		t.Fatalf("expected direct-confirm flow by default")
	}
}

func TestAuthConfigSessionTTL(t *testing.T) {
	if got := (AuthConfig{}).SessionTTL(); got != 7*24*time.Hour {
		t.Fatalf("default session ttl: %v", got)
	}
	if got := (AuthConfig{SessionTTLHour: 2}).SessionTTL(); got != 2*time.Hour {
		t.Fatalf("session ttl: %v", got)
	}
}

func TestBookingConfigDurations(t *testing.T) {
	if got := (BookingConfig{}).CheckInGrace(); got != 24*time.Hour {
		t.Fatalf("default checkin grace: %v", got)
	}
	if got := (BookingConfig{SweepIntervalMinute: 0}).SweepInterval(); got != 0 {
		t.Fatalf("sweep disabled should be 0, got %v", got)
	}
	if got := (BookingConfig{SweepIntervalMinute: 10}).SweepInterval(); got != 10*time.Minute {
		t.Fatalf("sweep interval: %v", got)
	}
}

func TestLoadConfigFromConsulKVEmptyKey(t *testing.T) {
	if _, err := LoadConfigFromConsulKV("localhost", 8500, ""); err == nil {
		t.Fatal("empty kv key should be rejected before dialing consul")
	}
}
