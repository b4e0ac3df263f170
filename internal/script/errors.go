package script

import "errors"

// Errors returned by the script package.
var (
	// ErrScript indicates the script failed to compile or raised an error.
	ErrScript = errors.New("script failed")
)
