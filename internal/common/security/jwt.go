package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultCookieName = "jwt"

type TokenManager struct {
	auth       *jwtauth.JWTAuth
	ttl        time.Duration
	cookieName string
}

func NewTokenManager(secret []byte, ttl time.Duration, cookieName string) *TokenManager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &TokenManager{
		auth:       jwtauth.New("HS256", secret, nil),
		ttl:        ttl,
		cookieName: cookieName,
	}
}

func (m *TokenManager) JWTAuth() *jwtauth.JWTAuth { return m.auth }
func (m *TokenManager) TTL() time.Duration        { return m.ttl }
func (m *TokenManager) CookieName() string        { return m.cookieName }

// GenerateToken issues a signed token carrying the user id, role and a unique token id.
func (m *TokenManager) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"jti":     uuid.NewString(),
		"exp":     now.Add(m.ttl).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := m.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return tokenString, nil
}

// Verifier looks for the token in the Authorization header first, then in the session cookie.
func (m *TokenManager) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(m.auth, jwtauth.TokenFromHeader, m.tokenFromCookie)
}

func (m *TokenManager) tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Helper functions to extract claims, can be used in middleware or services
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetTokenIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["jti"].(string)
	if !ok || id == "" {
		return "", errors.New("jti claim is missing or not a string")
	}
	return id, nil
}
