// Package forms binds and validates the HTML forms submitted by readers.
package forms

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the HTML field name rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to its error messages.
type FieldErrors map[string][]string

// Get returns the messages recorded for field.
func (e FieldErrors) Get(field string) []string {
	return e[field]
}

// Any reports whether at least one error was recorded.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// check validates form and collects failures as FieldErrors.
func check(form any) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.add("__all__", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		n := 0
		if s, ok := fe.Value().(string); ok {
			n = utf8.RuneCountInString(s)
		}
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), n)
	}
	return "Enter a valid value."
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
