// Package validator wraps go-playground/validator so failures are reported
// under the JSON field names a client actually sent, not Go struct names.
package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

// FieldError is one failed rule on one request field.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors is the full set of failures for a request payload.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, fe := range v {
		rule := fe.Tag
		if fe.Param != "" {
			rule += "=" + fe.Param
		}
		parts[i] = fe.Field + ": " + rule
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ValidateStruct runs the tag rules on s. Rule failures come back as
// ValidationErrors; anything else (e.g. a non-struct argument) is returned
// as-is.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	failures := make(ValidationErrors, len(ve))
	for i, fe := range ve {
		failures[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return failures
}

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// jsonFieldName maps a struct field to the name clients know it by. Fields
// without a usable json tag keep their Go name.
func jsonFieldName(field reflect.StructField) string {
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return field.Name
	}
	return tag
}
