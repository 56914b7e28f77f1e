// Package validation wraps go-playground/validator with the custom tags
// used by signup, profile and booking payloads.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&"

var (
	linkedinRe = regexp.MustCompile(`^https://(www\.)?linkedin\.com/in/.+$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
	// scheme is optional, so "cumma.in" is accepted
	websiteRe = regexp.MustCompile(`^(https?://)?([a-z0-9.-]+)\.([a-z.]{2,6})(/[\w .-]*)*/?$`)
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("enum", validateEnum))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("linkedin", func(fl validator.FieldLevel) bool {
		return linkedinRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("website", func(fl validator.FieldLevel) bool {
		return websiteRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	}))

	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

type enumValue interface {
	Valid() bool
}

func validateEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	if e, ok := field.Interface().(enumValue); ok {
		return e.Valid()
	}
	return false
}

// StrongPassword requires at least one lower case letter, one upper case
// letter, one digit and one of @$!%*?&, with no other characters.
func StrongPassword(p string) bool {
	if len(p) < models.MinPasswordLength {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// Struct validates s and converts failures into field errors keyed by the
// JSON path of the offending field, prefixed with prefix when non-empty.
func (v *Validator) Struct(prefix string, s interface{}) models.FieldErrors {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.FieldErrors{prefixed(prefix, "body"): err.Error()}
	}

	out := models.FieldErrors{}
	for _, fe := range verrs {
		out.Add(prefixed(prefix, fieldPath(fe)), message(fe))
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func prefixed(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return prefix + "." + path
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url", "website":
		return field + " must be a valid URL"
	case "linkedin":
		return field + " must be a LinkedIn profile URL (https://linkedin.com/in/...)"
	case "phone":
		return field + " must be a valid phone number"
	case "password":
		return fmt.Sprintf("%s must be at least %d characters with upper and lower case letters, a digit and one of %s",
			field, models.MinPasswordLength, passwordSpecials)
	case "enum", "oneof":
		return field + " has an unsupported value"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "eq":
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	case "unique":
		return field + " must not contain duplicates"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
