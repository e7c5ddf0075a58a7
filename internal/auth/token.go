package auth

import (
	"errors"
	"time"

	"bizdir_backend/internal/config"
	"bizdir_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carry the recipient identity the query API matches on. Kind
// and email ride along so a session fanned-out to under a custom
// target is matched without a directory lookup.
type Claims struct {
	RecipientID    string `json:"recipient_id"`
	RecipientKind  string `json:"recipient_kind"`
	RecipientEmail string `json:"recipient_email"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a session token. Session management itself is
// owned by the surrounding application; this core only needs tokens
// for seeding and tests.
func GenerateToken(recipientID string, kind models.RecipientKind, email string, role models.UserRole) (string, error) {
	cfg := config.GetConfig()

	ttl := time.Duration(cfg.JWT.TTL) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	claims := Claims{
		RecipientID:    recipientID,
		RecipientKind:  string(kind),
		RecipientEmail: email,
		Role:           string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.GetConfig()

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
