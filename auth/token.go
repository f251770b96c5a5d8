package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/config"
)

// Claims is the payload of every issued token: the user's identity plus the
// standard registered claims (expiry, issued-at, subject).
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens with a symmetric secret. Tokens embed the
// username and user id and expire a configured number of minutes after
// issuance. Nothing in this service re-parses an issued token outside the
// request middleware.
type Issuer struct {
	secret []byte
	expiry time.Duration
}

// NewIssuer builds an Issuer from configuration. An empty secret is a
// startup error: issuance itself has no runtime failure mode, so the only
// way to misconfigure signing is to never start.
func NewIssuer(cfg *config.AuthConfig) (*Issuer, error) {
	if cfg == nil || cfg.JWTSecret == "" {
		return nil, apperror.NewConfigError("JWT secret is not configured", nil)
	}
	if cfg.ExpiryMinutes <= 0 {
		return nil, apperror.NewConfigError("JWT expiry must be a positive number of minutes", nil)
	}
	return &Issuer{
		secret: []byte(cfg.JWTSecret),
		expiry: time.Duration(cfg.ExpiryMinutes) * time.Minute,
	}, nil
}

// Issue returns a signed HS256 token for the given user.
func (i *Issuer) Issue(username string, userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
