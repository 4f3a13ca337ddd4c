package inflation

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the calculator. Match them with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInsufficientData = errors.New("insufficient data")
)

// CalculationError carries the period and field that failed a computation
type CalculationError struct {
	Kind    error
	Period  int
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *CalculationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: period %d, %s=%v: %s", e.Kind, e.Period, e.Field, e.Value, e.Message)
	}
	if e.Period != 0 {
		return fmt.Sprintf("%v: period %d: %s", e.Kind, e.Period, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes the sentinel kind to errors.Is
func (e *CalculationError) Unwrap() error {
	return e.Kind
}

func invalidInput(period int, field string, value interface{}, message string) error {
	return &CalculationError{Kind: ErrInvalidInput, Period: period, Field: field, Value: value, Message: message}
}
