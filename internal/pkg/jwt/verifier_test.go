package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signedToken(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func accessClaims(tenant uuid.UUID) Claims {
	return Claims{
		TenantID:       tenant.String(),
		IdentityID:     42,
		SessionPurpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Issuer:    "identity",
			Audience:  jwt.ClaimStrings{"salescrm"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyAccessToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	v := NewVerifier(&key.PublicKey, "identity", "salescrm")
	tenant := uuid.New()

	claims, err := v.VerifyAccessToken(signedToken(t, key, accessClaims(tenant)))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	got, err := claims.Tenant()
	if err != nil || got != tenant || claims.IdentityID != 42 {
		t.Fatalf("unexpected claims %+v (%v)", claims, err)
	}

	tests := map[string]func(c *Claims){
		"wrong issuer":   func(c *Claims) { c.Issuer = "someone-else" },
		"wrong audience": func(c *Claims) { c.Audience = jwt.ClaimStrings{"billing"} },
		"refresh token":  func(c *Claims) { c.SessionPurpose = "refresh" },
		"no tenant":      func(c *Claims) { c.TenantID = "" },
		"no identity":    func(c *Claims) { c.IdentityID = 0 },
		"expired":        func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) },
	}
	for name, mutate := range tests {
		c := accessClaims(tenant)
		mutate(&c)
		if _, err := v.VerifyAccessToken(signedToken(t, key, c)); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}

	other, _ := rsa.GenerateKey(rand.Reader, 2048)
	if _, err := v.VerifyAccessToken(signedToken(t, other, accessClaims(tenant))); err == nil {
		t.Fatal("expected rejection of foreign signature")
	}
}

func TestLoadVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "public.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := LoadVerifier(Config{PubPath: path, Issuer: "identity", Audience: "salescrm"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := v.VerifyAccessToken(signedToken(t, key, accessClaims(uuid.New()))); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if _, err := LoadVerifier(Config{PubPath: filepath.Join(t.TempDir(), "missing.pem")}); err == nil {
		t.Fatal("expected error for missing key file")
	}
}
