// utils/auth.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// SessionClaims identify one enrollment attempt
type SessionClaims struct {
	EnrollmentID string `json:"enrollmentId"`
	Mobile       string `json:"mobile"`
	jwt.StandardClaims
}

// SessionTokens issues and validates enrollment session tokens
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokens creates a token issuer signed with secret
func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

// Issue generates a token for the given enrollment
func (s *SessionTokens) Issue(enrollmentID, mobile string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		EnrollmentID: enrollmentID,
		Mobile:       mobile,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
			Subject:   enrollmentID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a token and returns its claims
func (s *SessionTokens) Parse(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("no token provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.EnrollmentID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
