// Package auth resolves the bidder behind a request. The websocket and HTTP
// transports both pass identity to the coordinator explicitly.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HeaderUserID carries a trusted identity in development setups
const HeaderUserID = "X-User-ID"

var (
	ErrNoCredentials = errors.New("no credentials presented")
	ErrInvalidToken  = errors.New("invalid token")
)

// Authenticator verifies HS256 bearer tokens whose subject is the user ID
type Authenticator struct {
	secret              []byte
	allowHeaderIdentity bool
}

func NewAuthenticator(secret string, allowHeaderIdentity bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), allowHeaderIdentity: allowHeaderIdentity}
}

// Issue signs a token for userID, used by tooling and tests
func (a *Authenticator) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify returns the user ID carried by token
func (a *Authenticator) Verify(token string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// FromRequest reads a bearer token from the Authorization header or the
// token query parameter, then falls back to X-User-ID when allowed.
func (a *Authenticator) FromRequest(r *http.Request) (string, error) {
	token := ""
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", fmt.Errorf("%w: unsupported authorization scheme", ErrInvalidToken)
		}
		token = strings.TrimSpace(value)
	} else {
		token = r.URL.Query().Get("token")
	}

	if token != "" {
		return a.Verify(token)
	}
	if a.allowHeaderIdentity {
		if userID := strings.TrimSpace(r.Header.Get(HeaderUserID)); userID != "" {
			return userID, nil
		}
	}
	return "", ErrNoCredentials
}
