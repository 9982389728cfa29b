// Package validation wraps go-playground/validator and converts its failures
// into errs.Error values keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/errs"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Validator is safe for concurrent use; validator caches struct metadata internally.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate checks s and returns *errs.Error with one entry per failing field.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		key := fieldPath(e.Namespace())
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = e.Field() + " " + message(e)
	}
	return errs.ValidationFields(fields)
}

// fieldPath drops the root struct name: "RecipeInput.ingredients[0].amount"
// becomes "ingredients[0].amount".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(e validator.FieldError) string {
	countable := e.Kind() == reflect.String || e.Kind() == reflect.Slice || e.Kind() == reflect.Map
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "unique":
		return "must be unique"
	case "min", "gte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		if countable {
			return fmt.Sprintf("must contain at least %s item(s)", e.Param())
		}
		return "must be at least " + e.Param()
	case "max", "lte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		if countable {
			return fmt.Sprintf("must contain at most %s item(s)", e.Param())
		}
		return "must be at most " + e.Param()
	case "hexcolor":
		return "must be a hex color such as #E26C2D"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	case "slug":
		return "may contain only letters, digits, hyphens and underscores"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
