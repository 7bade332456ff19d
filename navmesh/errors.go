package navmesh

import "fmt"

// ErrFailure is the root sentinel every other navmesh error wraps, so
// callers can test with errors.Is(err, navmesh.ErrFailure) regardless of
// which detail bit was set.
var ErrFailure = fmt.Errorf("navmesh: query failed")

var (
	ErrInvalidParam   = fmt.Errorf("%w: invalid parameter", ErrFailure)
	ErrOutOfNodes     = fmt.Errorf("%w: node pool exhausted", ErrFailure)
	ErrBufferTooSmall = fmt.Errorf("%w: output buffer too small", ErrFailure)
	ErrPartialResult  = fmt.Errorf("%w: partial result", ErrFailure)
	ErrOutOfMemory    = fmt.Errorf("%w: out of memory", ErrFailure)
)

// AsError translates a failed Status into a wrapped sentinel error for Go
// callers at a package boundary. A Status that has not failed returns nil:
// Status keeps flowing unmodified through the query engine itself.
func AsError(s Status) error {
	if !s.Failed() {
		return nil
	}
	switch {
	case s.Detail(InvalidParam):
		return ErrInvalidParam
	case s.Detail(OutOfMemory):
		return ErrOutOfMemory
	default:
		return ErrFailure
	}
}
