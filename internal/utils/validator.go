package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags on a request body and returns a single
// human-readable message listing every failed field, or "" when valid.
func ValidateStruct(s interface{}) string {
	err := validate.Struct(s)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", strings.ToLower(fe.Field())))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters long", strings.ToLower(fe.Field()), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters long", strings.ToLower(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}
