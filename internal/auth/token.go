package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for any token that fails verification.
	// The underlying reason is wrapped for logging only.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned when a TokenIssuer is built without a secret.
	ErrEmptySecret = errors.New("token secret must not be empty")
)

// signingMethod is the only algorithm accepted on verification.
var signingMethod = jwt.SigningMethodHS256

// Claims are the registered claims carried by an access token.
// Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenIssuer signs and verifies stateless access tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A zero ttl issues tokens without expiry.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative: %s", ttl)
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed token whose subject is userID.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("token subject must not be empty")
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and checks its signature, algorithm and expiry.
// Every failure wraps ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, i.parserOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// NeedsReissue reports whether less than half of the token lifetime remains.
// Tokens without expiry never need reissue.
func (i *TokenIssuer) NeedsReissue(claims *Claims) bool {
	if i.ttl == 0 || claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Sub(i.now()) < i.ttl/2
}

func (i *TokenIssuer) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	return opts
}
