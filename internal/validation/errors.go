package validation

import (
	"errors"
	"strings"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errors collects every invalid field of a request so clients can fix them in one pass.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Merge appends the field errors carried by err, if any. Other errors are recorded
// without a field name.
func (e *Errors) Merge(err error) {
	if err == nil {
		return
	}
	var list Errors
	if errors.As(err, &list) {
		*e = append(*e, list...)
		return
	}
	var fe FieldError
	if errors.As(err, &fe) {
		*e = append(*e, fe)
		return
	}
	e.Add("", err.Error())
}

// Err returns nil when nothing was collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Fields extracts the field errors from err, or nil when err carries none.
func Fields(err error) []FieldError {
	var list Errors
	if errors.As(err, &list) {
		return list
	}
	var fe FieldError
	if errors.As(err, &fe) {
		return []FieldError{fe}
	}
	return nil
}
