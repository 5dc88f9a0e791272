package autosave

import "errors"

var (
	ErrSessionClosed = errors.New("editor session closed")
	ErrInvalidPatch  = errors.New("invalid patch")
)
