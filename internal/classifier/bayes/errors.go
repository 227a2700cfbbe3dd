package bayes

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataSet            = errors.New("bayes: dataset has no classes")
	ErrEmptyClass              = errors.New("bayes: class has no samples")
	ErrDegenerateNormalization = errors.New("bayes: categorical table sums to zero")
	ErrDimensionMismatch       = errors.New("bayes: dimension mismatch")
	ErrCategoryOutOfRange      = errors.New("bayes: category out of range")
	ErrBadSnapshot             = errors.New("bayes: malformed snapshot")
)

// FitError reports the (class, feature) cell whose distribution could not be fitted.
type FitError struct {
	Class   int
	Feature int
	Err     error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("bayes: fit class %d numerical feature %d: %v", e.Class, e.Feature, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}
