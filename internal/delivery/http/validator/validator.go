// Package validator adapts go-playground/validator to echo's Validator hook.
package validator

import (
	domainerrors "github.com/statech108/backend/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// Validator wraps a playground validator instance for echo.
type Validator struct {
	validate *playground.Validate
}

// New creates a Validator with struct tag validation enabled.
func New() *Validator {
	return &Validator{validate: playground.New(playground.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator. Failures surface as the application's
// validation error so the central error handler renders them uniformly.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
