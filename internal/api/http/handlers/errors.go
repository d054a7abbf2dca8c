package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Behnamfe76/docvault/internal/auth"
	"github.com/Behnamfe76/docvault/internal/service"
	apperrors "github.com/Behnamfe76/docvault/pkg/util/errorutil"
)

var validate = validator.New()

// validationError turns validator failures into a 400 with per-field details.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return apperrors.NewValidationError("invalid payload", details)
}

func mapLoginError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExchangeRejected):
		return apperrors.NewBadGateway("OAUTH_EXCHANGE_REJECTED", "authorization code exchange failed", err)
	case errors.Is(err, auth.ErrTokenMissing):
		return apperrors.NewBadGateway("OAUTH_TOKEN_MISSING", "provider returned no access token", err)
	case errors.Is(err, auth.ErrProfileFetchFailed):
		return apperrors.NewBadGateway("OAUTH_PROFILE_FAILED", "provider profile unavailable", err)
	case errors.Is(err, auth.ErrUnverifiedProfile):
		return apperrors.NewForbidden("OAUTH_UNVERIFIED_EMAIL", "provider email is not verified")
	default:
		return apperrors.NewInternalError(err)
	}
}

func mapDocumentError(err error) error {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		return apperrors.NewNotFound("document", nil)
	case errors.Is(err, service.ErrFileNameTaken):
		return apperrors.NewConflict("file name already in use", nil)
	case errors.Is(err, service.ErrEmptyFileName),
		errors.Is(err, service.ErrInvalidFile),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrNotPDF):
		return apperrors.NewValidationError(err.Error(), nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
