package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenNotValidYet      = errors.New("token is not yet valid")
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrMissingBearer         = errors.New("authorization header must be a bearer token")
)

const bearerPrefix = "Bearer "

// Manager is a JWT token generator and parser.
type Manager struct {
	signer  Signer
	issuer  string
	keyFunc jwt.Keyfunc
	leeway  time.Duration
	// methods pins the accepted "alg" header values.
	methods []string
}

// Claims represents the JWT claims, embedding standard claims and allowing for a custom payload.
type Claims struct {
	jwt.RegisteredClaims
	Payload map[string]interface{} `json:"payload"`
}

// Signer defines the interface for signing JWT claims.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)
}

// Option defines a function that can modify JWT claims.
type Option func(*Claims)

// WithExpiresAt sets a specific expiration time for the token.
func WithExpiresAt(t time.Time) Option {
	return func(c *Claims) {
		c.ExpiresAt = jwt.NewNumericDate(t)
	}
}

// WithTTL expires the token d after issuance.
func WithTTL(d time.Duration) Option {
	return func(c *Claims) {
		c.ExpiresAt = jwt.NewNumericDate(c.IssuedAt.Add(d))
	}
}

// WithNotBefore sets a specific not-before time for the token.
func WithNotBefore(t time.Time) Option {
	return func(c *Claims) {
		c.NotBefore = jwt.NewNumericDate(t)
	}
}

// WithSubject sets the subject claim.
func WithSubject(sub string) Option {
	return func(c *Claims) {
		c.Subject = sub
	}
}

// Generate generates a new JWT token with the given payload and options.
func (g *Manager) Generate(payload map[string]interface{}, opts ...Option) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   g.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Payload: payload,
	}

	for _, opt := range opts {
		opt(claims)
	}

	return g.signer.Sign(claims)
}

// Parse validates the token and returns its payload.
func (g *Manager) Parse(tokenString string) (map[string]interface{}, error) {
	parserOpts := []jwt.ParserOption{jwt.WithLeeway(g.leeway)}
	if len(g.methods) > 0 {
		parserOpts = append(parserOpts, jwt.WithValidMethods(g.methods))
	}
	if g.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(g.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, g.keyFunc, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotValidYet
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims.Payload, nil
	}

	return nil, ErrTokenInvalid
}

// ParseBearer extracts and validates the token of an Authorization header value.
func (g *Manager) ParseBearer(header string) (map[string]interface{}, error) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return nil, ErrMissingBearer
	}
	return g.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
}
