// Package entity contains the core business objects of the storefront bot.
package entity

import (
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidProductID(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}
