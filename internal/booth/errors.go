package booth

import "errors"

// ErrInvalidArgument is returned when a nil device handle is passed to a
// registry operation. No registry is modified in that case.
var ErrInvalidArgument = errors.New("booth: invalid argument")
