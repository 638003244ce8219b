/*
Package validator provides input validation with custom validation rules.

This package wraps go-playground/validator with one additional custom validation:
  - not_future: a time.Time that is not after the current time

No slug, password_strong or phone_e164 tag is registered.

Usage:

	import "github.com/nova-metrics/eventpipe/pkg/validator"

	v := validator.New()

	// Validate struct
	err := v.ValidateStruct(myStruct)

	// Validate single value
	err := v.ValidateVar(email, "required,email")
*/
package validator
