package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and validates session tokens handed out at login.
// Management requests may present such a token instead of repeating the
// username in the payload.
type TokenIssuer struct {
	key      []byte
	duration time.Duration
}

func NewTokenIssuer(key string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(key), duration: duration}
}

// SessionClaims carries the authenticated username inside the JWT.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates a signed HS256 token for the given username.
func (t *TokenIssuer) Generate(username string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "duochat",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Validate parses a token string and returns the username it was issued
// for, or an error when the signature or expiry is invalid.
func (t *TokenIssuer) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims.Username, nil
	}
	return "", jwt.ErrSignatureInvalid
}
