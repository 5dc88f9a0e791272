package repository

import "errors"

// ErrNotFound is returned when a requested entry doesn't exist
var ErrNotFound = errors.New("not found")
