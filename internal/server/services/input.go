package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is the registration request.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Secret      string `json:"secret" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"required,max=50"`
}

// Validate reports the first failing field as a *ValidationError.
func (in RegisterInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := jsonName(fe.StructField())
	return &ValidationError{Field: field, Message: fieldMessage(field, fe.Tag(), fe.Param())}
}

func jsonName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "Secret":
		return "secret"
	case "DisplayName":
		return "displayName"
	}
	return structField
}

func fieldMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	}
	return field + " is invalid"
}

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// DuplicateError reports an email or display name that is already taken.
type DuplicateError struct {
	Field string
	Value string
	err   error
}

func (e *DuplicateError) Error() string {
	if e.Field == "email" {
		return "Email already exists: " + e.Value
	}
	return "Nickname already exists: " + e.Value
}

func (e *DuplicateError) Unwrap() error { return e.err }

func duplicateEmail(email string) error {
	return &DuplicateError{Field: "email", Value: email, err: common.ErrDuplicateEmail}
}

func duplicateDisplayName(name string) error {
	return &DuplicateError{Field: "displayName", Value: name, err: common.ErrDuplicateDisplayName}
}
