// Package forms validates user-submitted form payloads and maps
// violations to message ids the view layer can localize.
package forms

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Login struct {
	Identifier string `form:"identifier" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

type Register struct {
	Email    string `form:"email" validate:"required,email"`
	Username string `form:"username" validate:"required,min=3,max=50"`
	Password string `form:"password" validate:"required,min=6"`
}

type Article struct {
	Title         string `form:"title" validate:"required,max=200"`
	Description   string `form:"description" validate:"required,max=5000"`
	CoverImageURL string `form:"cover_image_url" validate:"required,url"`
	Category      string `form:"category" validate:"omitempty,max=100"`
}

type Comment struct {
	Content string `form:"content" validate:"required,max=2000"`
}

// FieldErrors maps a struct field name to a localizable message id.
type FieldErrors map[string]string

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FieldErrors) Get(field string) string {
	return e[field]
}

// Validate checks a form struct and reports per-field message ids for
// every violated rule.
func Validate(form any) (bool, FieldErrors) {
	err := validate.Struct(form)
	if err == nil {
		return true, nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return false, FieldErrors{"form": "form.error.invalid"}
	}

	fields := make(FieldErrors, len(violations))
	for _, violation := range violations {
		if _, seen := fields[violation.Field()]; seen {
			continue
		}
		fields[violation.Field()] = messageID(violation.Tag())
	}
	return false, fields
}

func messageID(tag string) string {
	switch tag {
	case "required":
		return "form.error.required"
	case "email":
		return "form.error.email"
	case "url":
		return "form.error.url"
	case "min":
		return "form.error.too_short"
	case "max":
		return "form.error.too_long"
	default:
		return "form.error.invalid"
	}
}
