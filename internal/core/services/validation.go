package services

import (
	"fmt"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateEmail normalizes email and rejects anything that is not a usable address.
func validateEmail(email string) (string, error) {
	normalized := domain.NormalizeEmail(email)
	if err := validate.Var(normalized, "required,email"); err != nil {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentity, email)
	}
	return normalized, nil
}
