package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SessionToken struct {
	UserID int64 `json:"userID"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret   []byte
	lifetime time.Duration
}

func NewManager(secret string, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = time.Hour * 24 // 1 day
	}
	return &Manager{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

func (m *Manager) Create(userID int64) (string, error) {
	currentTime := time.Now().UTC()
	expirationDate := currentTime.Add(m.lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, SessionToken{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expirationDate),
		},
	})

	return token.SignedString(m.secret)
}

func (m *Manager) Verify(tokenString string) (SessionToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionToken{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return SessionToken{}, err
	} else if claims, ok := token.Claims.(*SessionToken); ok {
		return *claims, nil
	} else {
		return SessionToken{}, errors.New("invalid token")
	}
}
