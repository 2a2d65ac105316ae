package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errEmptySecret = errors.New("JWT secret cannot be empty")

type hmacSigner []byte

func (s hmacSigner) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s))
}

// NewSymmetric returns a Manager signing and verifying HS256 tokens with secret.
// Tokens carrying any other algorithm, including HS384 and HS512, are rejected.
func NewSymmetric(secret []byte, issuer string) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	key := append([]byte(nil), secret...)

	return &Manager{
		signer: hmacSigner(key),
		issuer: issuer,
		keyFunc: func(*jwt.Token) (interface{}, error) {
			return key, nil
		},
		leeway:  30 * time.Second,
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}, nil
}
