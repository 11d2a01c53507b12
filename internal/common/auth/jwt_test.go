package auth

import (
	"testing"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/config"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "parkeasy",
		Audience:  "parkeasy",
	}
}

func TestGenerateSessionToken(t *testing.T) {
	cfg := testAuthCfg()

	token, exp, err := GenerateSessionToken(cfg, "u-1", "u1@example.com", []string{"regular"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "regular" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestCheckInTokenScoping(t *testing.T) {
	cfg := testAuthCfg()

	token, _, err := GenerateCheckInToken(cfg, "b-1", "u-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateCheckInToken: %v", err)
	}

	got, err := ParseCheckInToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseCheckInToken: %v", err)
	}
	if got.BookingID != "b-1" || got.UserID != "u-1" {
		t.Fatalf("claims mismatch: %#v", got)
	}
}

// session token 不能当作入场码使用，反之亦然。
func TestTokenTypeMismatchRejected(t *testing.T) {
	cfg := testAuthCfg()

	session, _, err := GenerateSessionToken(cfg, "u-1", "", []string{"regular"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if _, err := ParseCheckInToken(cfg, session); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for session token at checkin, got %v", err)
	}

	checkin, _, err := GenerateCheckInToken(cfg, "b-1", "u-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateCheckInToken: %v", err)
	}
	if _, err := ParseSessionToken(cfg, checkin); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for checkin token at session parse, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testAuthCfg()

	// leeway 为 30s，有效期要压得更早才能触发过期
	token, _, err := GenerateCheckInToken(cfg, "b-1", "u-1", -2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateCheckInToken: %v", err)
	}
	if _, err := ParseCheckInToken(cfg, token); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	cfg := testAuthCfg()
	token, _, err := GenerateCheckInToken(cfg, "b-1", "u-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateCheckInToken: %v", err)
	}

	other := cfg
	other.JWTSecret = "other-secret"
	if _, err := ParseCheckInToken(other, token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}
