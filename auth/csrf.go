package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const csrfIssuer = "portfolio-admin"

var ErrCSRFMismatch = errors.New("csrf token does not belong to this session")

// CSRF issues and verifies signed tokens bound to a session identifier.
type CSRF struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCSRF(secret string, ttl time.Duration) *CSRF {
	return &CSRF{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token valid for sessionID until the session TTL elapses.
func (c *CSRF) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    csrfIssuer,
		Subject:   sessionDigest(sessionID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the signature, expiry and session binding of token.
func (c *CSRF) Verify(token, sessionID string) error {
	if token == "" {
		return errors.New("missing csrf token")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(csrfIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("parse csrf token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(sessionDigest(sessionID))) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}

func sessionDigest(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
