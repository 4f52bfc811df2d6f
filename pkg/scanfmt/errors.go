package scanfmt

import (
	"errors"
	"fmt"
)

// ErrNotWorkbook indicates the workbook name does not carry the .xlsx suffix.
var ErrNotWorkbook = errors.New("not an xlsx workbook")

// ValidationError reports a step parameter that failed validation. The step
// it names has not mutated the worksheet; earlier steps may have.
type ValidationError struct {
	Step  string
	Field string
	Value interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v", e.Step, e.Field, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(step, field string, value interface{}) *ValidationError {
	return &ValidationError{Step: step, Field: field, Value: value}
}
