package profile

import "errors"

// ErrInvalidInput indicates invalid profile input.
var ErrInvalidInput = errors.New("invalid profile input")
