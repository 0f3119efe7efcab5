package service

import (
	"errors"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrItemNotFound  = fmt.Errorf("item %w", ErrNotFound)
	ErrAlertNotFound = fmt.Errorf("alert %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)

	ErrValidation    = errors.New("validation failed")
	ErrForbidden     = errors.New("forbidden")
	ErrAlertConflict = errors.New("an active alert of this type already exists for the item")
	ErrEmailExists   = errors.New("email already exists")
)

// authorize rejects the actor unless it holds privilege.
func authorize(actor model.Actor, privilege string) error {
	if !actor.Can(privilege) {
		return fmt.Errorf("%w: requires '%s' privilege", ErrForbidden, privilege)
	}
	return nil
}

func validate(v any) error {
	errs := validator.ValidateStruct(v)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound maps gorm's missing-row error to target and wraps anything else as a store failure.
func notFound(err, target error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return fmt.Errorf("%s: %w", op, err)
}
