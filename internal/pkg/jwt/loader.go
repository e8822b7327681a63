// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	PubPath  string
	Issuer   string
	Audience string
}

// LoadVerifier reads the issuer's PEM public key (PKIX, PKCS1 or certificate)
// and builds a Verifier.
func LoadVerifier(cfg Config) (*Verifier, error) {
	b, err := os.ReadFile(cfg.PubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", cfg.PubPath, err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key %s: %w", cfg.PubPath, err)
	}
	return NewVerifier(pub, cfg.Issuer, cfg.Audience), nil
}
