package query

import (
	"errors"
	"fmt"
)

// UnsupportedOperatorError reports a "$"-prefixed key that is not a known
// operator.
type UnsupportedOperatorError struct {
	Path     string
	Operator string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %s on field %q", e.Operator, e.Path)
}

// IsUnsupportedOperator returns true if err is or wraps an
// UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	var uo *UnsupportedOperatorError
	return errors.As(err, &uo)
}

// OperandShapeError reports an operator whose operand has the wrong shape,
// such as $between with three elements.
type OperandShapeError struct {
	Path     string
	Operator string
	Want     string // e.g. "an array of two values"
}

func (e *OperandShapeError) Error() string {
	return fmt.Sprintf("operator %s on field %q: operand must be %s", e.Operator, e.Path, e.Want)
}

// IsOperandShape returns true if err is or wraps an OperandShapeError.
func IsOperandShape(err error) bool {
	var os *OperandShapeError
	return errors.As(err, &os)
}
