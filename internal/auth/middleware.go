package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Behnamfe76/docvault/pkg/util/errorutil"
)

const subjectKey = "auth_subject"

// Resolver maps a presented bearer token to a subject.
type Resolver interface {
	Resolve(token string) (string, bool)
}

// AuthMiddleware validates bearer tokens and stores the caller's subject.
type AuthMiddleware struct {
	resolver Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	subject, ok := m.resolver.Resolve(strings.TrimSpace(parts[1]))
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(subjectKey, subject)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject.
func SubjectFromContext(c *fiber.Ctx) (string, bool) {
	subject, ok := c.Locals(subjectKey).(string)
	return subject, ok && subject != ""
}
