package validation

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed struct field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects every failed field of one struct
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// StructValidator validates structs using go-playground validator tags.
// Field names in messages come from the given struct tag (yaml for config,
// csv for input rows).
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a validator that reports fields by tagName
func NewStructValidator(tagName string) *StructValidator {
	v := validator.New()

	v.RegisterValidation("separator", isValidSeparator)
	v.RegisterValidation("filename", isValidFilename)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get(tagName), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &StructValidator{validate: v}
}

// Validate returns nil or an Errors value listing every failed field
func (s *StructValidator) Validate(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Namespace(),
			Message: formatValidationError(fe),
		})
	}
	return out
}

func formatValidationError(err validator.FieldError) string {
	field := err.Namespace()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "separator":
		return fmt.Sprintf("%s must be a single character other than a quote or line break", field)
	case "filename":
		return fmt.Sprintf("%s must be a plain file name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidSeparator accepts a single rune usable as a CSV field delimiter
func isValidSeparator(fl validator.FieldLevel) bool {
	sep := fl.Field().String()
	if utf8.RuneCountInString(sep) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(sep)
	return r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}

// isValidFilename rejects paths and traversal
func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" {
		return false
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return false
	}
	return len(filename) <= 255
}
