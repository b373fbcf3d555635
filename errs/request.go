package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Unauthorized = NewUnauthorizedError("Unauthorized")
)

// Authentication & Authorization Errors
var (
	ErrAdminNotFound    = errors.New("admin not found")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInvalidCSRFToken = errors.New("invalid csrf token")
)

func Malformed(payloadName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		message:    fmt.Sprintf("Malformed %s payload", payloadName),
		kind:       ErrInvalidJSON,
	}
}

// Request & Input-Validation Error Constructors
func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		message:    fmt.Sprintf("Field '%s' is required", fieldName),
		kind:       ErrMissingRequiredField,
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName string, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		message:    message,
		kind:       ErrInvalidField,
		Field:      fieldName,
	}
}

func NewNoFieldsToUpdateError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		message:    "No fields to update",
		kind:       ErrNoFieldsToUpdate,
	}
}

func NewUploadFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		message:    "Failed to upload image",
		kind:       ErrUploadFailed,
		Field:      "image",
		Cause:      cause,
	}
}

// Authentication & Authorization Error Constructors
func NewAdminNotFoundError(username string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		message:    "Admin user not found",
		kind:       ErrAdminNotFound,
		Details:    fmt.Sprintf("no admin named %q", username),
		Field:      "username",
	}
}

func NewWrongCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		message:    "Wrong credentials",
		kind:       ErrWrongCredentials,
		Field:      "password",
	}
}

func NewInvalidCSRFTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		message:    "Invalid CSRF token",
		kind:       ErrInvalidCSRFToken,
		Cause:      cause,
	}
}

func IsMissingRequiredFieldError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}

func IsNoFieldsToUpdateError(err error) bool {
	return errors.Is(err, ErrNoFieldsToUpdate)
}

func IsWrongCredentialsError(err error) bool {
	return errors.Is(err, ErrWrongCredentials)
}
