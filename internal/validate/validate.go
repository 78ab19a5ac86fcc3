// Package validate wraps schema validation of request payloads.
package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPayload marks a payload that failed schema validation.
var ErrInvalidPayload = errors.New("invalid payload")

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a struct against its `validate` tags.
func Struct(payload any) error {
	if err := v.Struct(payload); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, verr.Error())
		}
		return err
	}
	return nil
}
