package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL is how long a session token stays valid.
	DefaultTokenTTL = 120 * time.Minute
	// DefaultCookieMaxAge is the retention of the session cookie. It is
	// longer than the token lifetime; the token's own expiry wins.
	DefaultCookieMaxAge = 7 * 24 * time.Hour
	// DefaultCookieName is the cookie carrying the session token.
	DefaultCookieName = "access_token"
)

var (
	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenConfig is the explicit configuration of a TokenIssuer.
type TokenConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool
}

// DefaultTokenConfig returns a config with the default lifetimes.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret:       secret,
		TTL:          DefaultTokenTTL,
		CookieName:   DefaultCookieName,
		CookieMaxAge: DefaultCookieMaxAge,
	}
}

// Claims represents session token claims. Subject carries the username;
// ID is a unique token id used for revocation.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	cfg    TokenConfig
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer; zero values in cfg fall back to defaults.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = DefaultCookieMaxAge
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &TokenIssuer{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer reading time from now.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *i
	cp.now = now
	return &cp
}

// Config returns the issuer configuration.
func (i *TokenIssuer) Config() TokenConfig {
	return i.cfg
}

// Issue signs a new token for username.
func (i *TokenIssuer) Issue(username string) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry and returns the claims.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Expiry is checked here so the issuer clock applies.
	if claims.ExpiresAt == nil || !i.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Remaining returns how long claims stay valid, never negative.
func (i *TokenIssuer) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	d := claims.ExpiresAt.Time.Sub(i.now())
	if d < 0 {
		return 0
	}
	return d
}
