package validation

import (
	"errors"
	"strings"
)

// ErrInvalid is matched by every *Errors value.
var ErrInvalid = errors.New("validation failed")

// FieldError names a failing field by its JSON path, e.g. "dimensions.width".
type FieldError struct {
	Field   string
	Message string
}

// Errors lists every failing field of one input, in declaration order.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Message returns the first message reported for field.
func (e *Errors) Message(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}
