package shared

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer        = "product-catalog"
	userIDContext = "user_id"
)

// JWTUserMiddleware only lets requests through that carry a bearer token signed
// with secret. The token subject is stored in the request locals.
func JWTUserMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jwtToken, err := GetTokenFromRequest(c)
		if err != nil {
			slog.Warn("Error getting token from request", "err", err)
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		token, err := ValidateJWTForUser(secret, jwtToken)
		if err != nil || !token.Valid {
			slog.Warn("Error validating token", "err", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		c.Locals(userIDContext, subject)

		return c.Next()
	}
}

func GenerateJWTForUser(secret []byte, userID string, expiry time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(expiry),
		NotBefore: jwt.NewNumericDate(time.Now()),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateJWTForUser(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
}

// GetUserIdFromContext returns the subject stored by JWTUserMiddleware.
func GetUserIdFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals(userIDContext).(string); ok {
		return id
	}
	return ""
}

func GetTokenFromRequest(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("missing or invalid Authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", errors.New("missing or invalid Authorization header")
	}

	return token, nil
}
