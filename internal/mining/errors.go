package mining

import "errors"

// ErrInvalidArgument matches every *ArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("mining: invalid argument")

// ArgumentError reports a rejected query parameter. Msg is the exact
// human-readable message shown to callers.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// InvalidArgument lets instrumentation classify the error without
// importing this package.
func (e *ArgumentError) InvalidArgument() bool { return true }

func invalidArgument(msg string) error { return &ArgumentError{Msg: msg} }

// Literal messages for rejected parameters.
const (
	msgNonPositiveK = "k must be greater than 0."
	msgYearRange    = "year must be greater than 1500."
	msgOrbitBlank   = "orbit cannot be null or empty."
	msgOrbitPadded  = "There should be no empty space at the beginning or the end of a orbit."
	msgOrbitLength  = "The length of the orbit must be equal or greater than 2 and equal or smaller than 10."
	msgOrbitUnknown = "The orbit must be 'GTO', 'LEO' or 'Other'."
)

// NoCountry is returned by DominantCountry when no launch qualifies.
const NoCountry = "Cannot find any country."
