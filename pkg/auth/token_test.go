package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/limited-access-backend/pkg/config"
)

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		JWTSecret: "admin-secret",
		JWTIssuer: "limited-access",
		TokenTTL:  time.Hour,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testAdminConfig()
	token, err := MintAdminToken(cfg, time.Now(), "ops@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != RoleAdmin || claims.Subject != "ops@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	cfg := testAdminConfig()
	token, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour), "ops")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAdminToken(cfg, token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestParseAdminTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := testAdminConfig()
	token, err := MintAdminToken(cfg, time.Now(), "ops")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.JWTSecret = "different"
	if _, err := ParseAdminToken(other, token); err == nil {
		t.Fatal("expected signature failure")
	}

	other = cfg
	other.JWTIssuer = "someone-else"
	if _, err := ParseAdminToken(other, token); err == nil {
		t.Fatal("expected issuer failure")
	}
}

func TestParseAdminTokenRequiresAdminRole(t *testing.T) {
	cfg := testAdminConfig()
	claims := AdminClaims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAdminToken(cfg, token); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestMintAdminTokenValidatesConfig(t *testing.T) {
	cfg := testAdminConfig()
	cfg.JWTSecret = ""
	if _, err := MintAdminToken(cfg, time.Now(), "ops"); err == nil {
		t.Fatal("expected missing secret error")
	}
	if _, err := MintAdminToken(testAdminConfig(), time.Now(), "  "); err == nil {
		t.Fatal("expected missing subject error")
	}
}
