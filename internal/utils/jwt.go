package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // sentinel errors for callers to match on
    "strings" // header splitting
    "time"    // issued-at and optional expiry

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by VerifyToken for every kind of rejection:
// absent, malformed, badly signed, wrong algorithm, expired, or missing the
// username claim.  Callers deliberately get no finer detail.
var ErrInvalidToken = errors.New("invalid token")

// ErrNoSigningKey means the server was started without a signing secret.
var ErrNoSigningKey = errors.New("jwt signing key not configured")

// sessionClaims is the payload of a session token.  Username is the only
// application claim; identity must be re-resolved against the user table by
// callers that need more than the name.
type sessionClaims struct {
    Username string `json:"username"`
    jwt.RegisteredClaims
}

// IssueToken builds and signs an HS256 JWT carrying username.  When ttlMin is
// positive an exp claim is added; otherwise the token stays valid until the
// secret is rotated, which matches how sessions have always behaved here.
func IssueToken(secret, username string, ttlMin int) (string, error) {
    if secret == "" {
        return "", ErrNoSigningKey
    }
    now := time.Now().UTC()
    claims := sessionClaims{
        Username: username,
        RegisteredClaims: jwt.RegisteredClaims{
            IssuedAt: jwt.NewNumericDate(now),
        },
    }
    if ttlMin > 0 {
        claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(ttlMin) * time.Minute))
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken checks the signature of raw against secret and returns the
// embedded username.  It does not check that the user still exists.
func VerifyToken(secret, raw string) (string, error) {
    if secret == "" || raw == "" {
        return "", ErrInvalidToken
    }
    var claims sessionClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Only HMAC is accepted; this also rejects alg=none.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid || claims.Username == "" {
        return "", ErrInvalidToken
    }
    return claims.Username, nil
}

// BearerToken extracts the credential from an Authorization header value.
// The header is split on whitespace and the second field is returned, so
// "Bearer abc" yields "abc".  A missing or one-word header yields "".
func BearerToken(header string) string {
    fields := strings.Fields(header)
    if len(fields) < 2 {
        return ""
    }
    return fields[1]
}
