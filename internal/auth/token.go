// Package auth issues and verifies bearer access tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"fashionai/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "fashionai-api"
	Audience = "fashionai-client"
)

// ErrInvalidToken is returned by Parse for any token that must not be trusted.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager signs and verifies HMAC JWTs carrying the user ID as subject.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager from JWT_SECRET, JWT_ALGORITHM and ACCESS_TOKEN_EXPIRE_MINUTES.
func NewTokenManager(cfg *config.Config) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	alg := cfg.JWTAlgorithm
	if alg == "" {
		alg = "HS256"
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", alg)
	}
	minutes := cfg.AccessTokenExpireMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		method: method,
		ttl:    time.Duration(minutes) * time.Minute,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for userID.
func (m *TokenManager) Issue(userID uint) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Parse verifies signature, algorithm, issuer, audience and expiry and returns the subject user ID.
func (m *TokenManager) Parse(tokenString string) (uint, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}
