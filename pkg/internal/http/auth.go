package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/polleyhq/polley/pkg/internal/models"
)

// IReader verifies bearer tokens issued by the external auth provider. It may
// stay nil when no secret is configured; the service then runs anonymous-only.
var IReader *TokenReader

type TokenClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type TokenReader struct {
	secret []byte
}

func NewTokenReader(secret string) (*TokenReader, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("auth secret is not configured")
	}
	return &TokenReader{secret: []byte(secret)}, nil
}

func (v *TokenReader) Parse(tk string) (models.Account, error) {
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tk, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Account{}, err
	}
	if !token.Valid || len(claims.Subject) == 0 {
		return models.Account{}, fmt.Errorf("invalid token")
	}

	return models.Account{ID: claims.Subject, Name: claims.Name}, nil
}

// Voting works anonymously, so a missing or bad token only means the request
// proceeds without an account attached; handlers that need one check locals.
func authMiddleware(c *fiber.Ctx) error {
	if IReader == nil {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		tk := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if user, err := IReader.Parse(tk); err == nil {
			c.Locals("user", user)
		}
	}

	return c.Next()
}
