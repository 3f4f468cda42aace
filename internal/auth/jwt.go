package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Claims carried in issued tokens. Subject is the user id; ID (jti) keys the
// server-side session the token belongs to.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Manager issues and validates HS256 tokens.
type Manager struct {
	secret  []byte
	timeout time.Duration
}

func NewManager(secret []byte, timeout time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty JWT secret")
	}
	return &Manager{secret: secret, timeout: timeout}, nil
}

// Issue signs a token for the user and returns it with its session id (jti).
func (m *Manager) Issue(userID, name string) (token string, jti string, err error) {
	jti = xid.New().String()
	now := time.Now()
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return token, jti, nil
}

// Validate parses and verifies a token, returning its claims.
func (m *Manager) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
