// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the singleton validator instance with the
// ShowGraph custom validators registered. Thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Custom tags mirror the pure field rules so request structs
		// fail the same inputs the rules would.
		mustRegister("showmail", func(fl validator.FieldLevel) bool {
			_, err := Mail(fl.Field().String())
			return err == nil
		})
		mustRegister("agestring", func(fl validator.FieldLevel) bool {
			_, err := Age(fl.Field().String())
			return err == nil
		})
		mustRegister("gendervalue", func(fl validator.FieldLevel) bool {
			_, err := Gender(fl.Field().String())
			return err == nil
		})
		mustRegister("showtitle", func(fl validator.FieldLevel) bool {
			_, err := Title(fl.Field().String())
			return err == nil
		})
		mustRegister("showdate", func(fl validator.FieldLevel) bool {
			_, err := Date(fl.Field().String())
			return err == nil
		})
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validator %q: %v", tag, err))
	}
}

// errorMessages maps the custom tags to human-readable messages.
var errorMessages = map[string]string{
	"required":    "%s is required",
	"showmail":    "%s must be a valid email address",
	"agestring":   "%s must be an integer between 1 and 100",
	"gendervalue": "%s must be one of: male, female, m, f",
	"showtitle":   "%s must be 1 to 50 characters",
	"showdate":    "%s must be a DD-MM-YYYY date",
}

// ValidateStruct validates a struct using the singleton validator and
// translates failures into a single *Error suitable for the transport.
func ValidateStruct(s interface{}) *Error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errorf("validation failed: %v", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if template, ok := errorMessages[fe.Tag()]; ok {
			messages = append(messages, fmt.Sprintf(template, fe.Field()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return Errorf("%s", strings.Join(messages, "; "))
}
