package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/docvault/internal/api/dto"
	"github.com/Behnamfe76/docvault/internal/auth"
	apperrors "github.com/Behnamfe76/docvault/pkg/util/errorutil"
)

const bearerTokenType = "Bearer"

// AuthHandler exposes the Google login flow and token refresh.
type AuthHandler struct {
	gate *auth.Gate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(gate *auth.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// Login GET /auth/google/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return c.JSON(dto.LoginURLResponse{AuthURL: h.gate.LoginURL()})
}

// Callback GET /auth/google/callback.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if providerErr := c.Query("error"); providerErr != "" {
		return apperrors.NewValidationError("authorization denied", map[string]any{"error": providerErr})
	}
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return apperrors.NewValidationError("code is required", nil)
	}

	pair, err := h.gate.CompleteLogin(c.UserContext(), code)
	if err != nil {
		return mapLoginError(err)
	}
	return c.JSON(dto.TokenPairResponse{
		AccessToken:      pair.Access.Value,
		RefreshToken:     pair.Refresh.Value,
		TokenType:        bearerTokenType,
		ExpiresAt:        pair.Access.ExpiresAt,
		RefreshExpiresAt: pair.Refresh.ExpiresAt,
	})
}

// Refresh POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	access, err := h.gate.Refresh(req.RefreshToken)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.JSON(dto.AccessTokenResponse{
		AccessToken: access.Value,
		TokenType:   bearerTokenType,
		ExpiresAt:   access.ExpiresAt,
	})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.JSON(dto.MeResponse{Subject: subject})
}
