// Package validation checks request payloads with go-playground/validator and
// turns failures into apperror validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mohamedamineameur/renderback/internal/apperror"
)

// Validator wraps go-playground/validator with domain error conversion.
// It is safe for concurrent use; build one and share it.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate checks s and returns an *apperror.AppError for the first failing
// field. entity prefixes the message, e.g. "Couleur.name cannot be null".
func (v *Validator) Validate(entity string, s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), message(entity, fe))
}

func message(entity string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s.%s cannot be null", entity, fe.Field())
	default:
		return fmt.Sprintf("%s.%s is invalid", entity, fe.Field())
	}
}
