package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/avelia/catalog-service/pkg/apperrors"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct runs the tag-declared rules on s and converts failures into the
// field-level taxonomy. Returns nil when s is valid.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(apperrors.FieldError{Field: "_", Message: err.Error()})
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fieldPath(fe),
			Message: messageFor(fe),
		})
	}
	return apperrors.NewValidationError(fields...)
}

// All validates every element and fails atomically: if any element is
// invalid the whole batch is rejected, with errors prefixed by index.
func All[T any](items []T) error {
	var fields []apperrors.FieldError
	for i, item := range items {
		if err := Struct(item); err != nil {
			var ve *apperrors.ValidationError
			if errors.As(err, &ve) {
				for _, f := range ve.Fields {
					fields = append(fields, apperrors.FieldError{
						Field:   fmt.Sprintf("[%d].%s", i, f.Field),
						Message: f.Message,
					})
				}
				continue
			}
			return err
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// EmptyToNil implements the "unset is null, not empty string" rule for
// optional text fields at the data boundary.
func EmptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func fieldPath(fe validator.FieldError) string {
	// StructNamespace is Type.Field.Nested; drop the type prefix.
	ns := fe.StructNamespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
