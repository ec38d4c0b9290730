package filter

import "github.com/pkg/errors"

var (
	// ErrInvalidParameter is returned when a filter or buffer is asked for with
	// parameters outside their allowed range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrClosed is returned when a filter or buffer factory is used after Close.
	ErrClosed = errors.New("use of closed filter")
)

// NewInvalidParameterError wraps ErrInvalidParameter with a description of the bad value.
func NewInvalidParameterError(msg string) error {
	return errors.Wrap(ErrInvalidParameter, msg)
}
