package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// asymmetricSigner implements the Signer interface for RS256.
type asymmetricSigner struct {
	privateKey *rsa.PrivateKey
}

func (s *asymmetricSigner) Sign(claims jwt.Claims) (string, error) {
	if s.privateKey == nil {
		return "", fmt.Errorf("manager holds no private key and can only verify")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

// NewAsymmetric creates a new Manager that uses an RS256 key pair.
// A nil private key yields a verify-only manager.
func NewAsymmetric(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) (*Manager, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}

	return &Manager{
		signer: &asymmetricSigner{privateKey: privateKey},
		issuer: issuer,
		keyFunc: func(*jwt.Token) (interface{}, error) {
			return publicKey, nil
		},
		leeway:  30 * time.Second,
		methods: []string{jwt.SigningMethodRS256.Alg()},
	}, nil
}
