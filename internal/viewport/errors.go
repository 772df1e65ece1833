package viewport

import (
	"errors"
	"fmt"
)

// Viewport errors. Transport and parse failures of a load never surface
// here; they are reported through Callbacks.OnError.
var (
	// ErrResource means the render surface or a GPU resource could not be
	// created. Attach leaves the controller Uninitialized and may be retried.
	ErrResource = errors.New("viewport resource error")

	// ErrState marks lifecycle misuse.
	ErrState = errors.New("viewport state error")

	ErrDisposed        = fmt.Errorf("%w: viewport is disposed", ErrState)
	ErrNotAttached     = fmt.Errorf("%w: viewport is not attached", ErrState)
	ErrAlreadyAttached = fmt.Errorf("%w: viewport is already attached", ErrState)
)
