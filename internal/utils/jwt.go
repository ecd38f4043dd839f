package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "fmt"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token type discriminators embedded in the "type" claim.  An access
// token can never be replayed against the refresh endpoint and vice
// versa because the type is checked before the subject is trusted.
const (
    TokenTypeAccess  = "access"
    TokenTypeRefresh = "refresh"
)

// TokenClaims is the claim set carried by both token kinds: the
// registered claims (sub, exp, iat) plus the type discriminator.
type TokenClaims struct {
    Type string `json:"type"`
    jwt.RegisteredClaims
}

// SignedToken pairs a serialized JWT with its expiry.  Access tokens are
// short-lived and sent in the Authorization header; refresh tokens are
// long-lived and only appear in request bodies.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// SigningMethod maps an algorithm identifier from configuration to a JWT
// signing method.  Only the HMAC family is supported; anything else is a
// configuration error.
func SigningMethod(alg string) (jwt.SigningMethod, error) {
    switch alg {
    case "", "HS256":
        return jwt.SigningMethodHS256, nil
    case "HS384":
        return jwt.SigningMethodHS384, nil
    case "HS512":
        return jwt.SigningMethodHS512, nil
    default:
        return nil, fmt.Errorf("unsupported signing algorithm: %s", alg)
    }
}

// NewAccessToken builds and signs a short-lived access token for the
// given subject (the username).
func NewAccessToken(secret, alg, subject string, ttl time.Duration) (SignedToken, error) {
    return newToken(secret, alg, subject, TokenTypeAccess, ttl)
}

// NewRefreshToken builds and signs a long-lived refresh token for the
// given subject.  Callers must persist the matching look-aside record so
// the token can be revoked before its natural expiry.
func NewRefreshToken(secret, alg, subject string, ttl time.Duration) (SignedToken, error) {
    return newToken(secret, alg, subject, TokenTypeRefresh, ttl)
}

func newToken(secret, alg, subject, typ string, ttl time.Duration) (SignedToken, error) {
    method, err := SigningMethod(alg)
    if err != nil {
        return SignedToken{}, err
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := TokenClaims{
        Type: typ,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   subject,
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies signature and expiry of a serialized token and
// returns its claims.  The signing method is pinned to the HMAC family so
// a token signed with "none" or an asymmetric algorithm is rejected
// regardless of its payload.
func ParseToken(secret, raw string) (*TokenClaims, error) {
    claims := &TokenClaims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
        }
        return []byte(secret), nil
    })
    if err != nil {
        return nil, err
    }
    if !tok.Valid {
        return nil, errors.New("invalid token")
    }
    return claims, nil
}
