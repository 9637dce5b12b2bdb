package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linemk/ld-shop/internal/domain/models"
)

var ErrInvalidToken = errors.New("invalid token")

// NewToken генерирует JWT-токен для указанного пользователя с заданным временем жизни.
func NewToken(id models.Identity, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(id.ID, 10),
		"username": id.Username,
		"role":     id.Role,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок и восстанавливает личность из claims
func ParseToken(tokenStr, secret string) (models.Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Проверка алгоритма
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, fmt.Errorf("%w: claims", ErrInvalidToken)
	}

	// идентификатор пользователя лежит в поле "sub"
	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Identity{}, fmt.Errorf("%w: sub not found", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return models.Identity{}, fmt.Errorf("%w: invalid user id", ErrInvalidToken)
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}
	return models.Identity{ID: userID, Username: username, Role: role}, nil
}
