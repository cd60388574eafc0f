// Package jsonresponse enables consistent responses across all handlers.
package jsonresponse

import "github.com/go-playground/validator/v10"

// jsonError provides type for explicit json encoded error response.
type jsonError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) jsonError {
	return jsonError{Error: err.Error()}
}

// GetErrorMsg renders a readable message for a failed binding rule.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "gt":
		return " must be greater than " + fe.Param()
	case "currency":
		return " is not supported"
	default:
		return " is invalid"
	}
}
