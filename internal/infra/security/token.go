// Package security resolves back-office bearer tokens into principals.
// Tokens are HS256 JWTs issued by the hotel's identity service.
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotelrates/internal/app/auth"
)

var (
	ErrNoSecret     = errors.New("security: signing secret not configured")
	ErrInvalidToken = errors.New("security: invalid token")
)

// DefaultIssuer is the iss claim of tokens minted by hotelrates-token.
const DefaultIssuer = "hotelrates"

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type TokenVerifier struct {
	Secret []byte
	Issuer string
}

func (v TokenVerifier) Verify(raw string) (auth.Principal, error) {
	if len(v.Secret) == 0 {
		return auth.Principal{}, ErrNoSecret
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30 * time.Second)}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return auth.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return auth.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return auth.Principal{Subject: claims.Subject, Roles: append([]string(nil), claims.Roles...)}, nil
}

// Issue signs a token; used by ops tooling and tests.
func (v TokenVerifier) Issue(subject string, roles []string, ttl time.Duration, now time.Time) (string, error) {
	if len(v.Secret) == 0 {
		return "", ErrNoSecret
	}
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}

// ExtractBearerToken returns the token of an Authorization header, or "".
func ExtractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
