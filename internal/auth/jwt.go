package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity fields read from a verified bearer token.
type Claims struct {
	Subject string
	Email   string
}

// TokenVerifier verifies HS256-signed bearer tokens.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates a token string. Expiry is checked by the
// parser; a missing sub claim is rejected here.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, fmt.Errorf("token has no sub claim")
	}

	email, _ := claims["email"].(string)

	return &Claims{Subject: subject, Email: email}, nil
}

// GenerateToken signs a token for the given subject. Used by the admin token
// command and by tests.
func GenerateToken(secret, subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
