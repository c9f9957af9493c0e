package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrScriptNotFound indicates the script content could not be loaded.
	ErrScriptNotFound = errors.New("script not found")
	// ErrInvalidScript is returned when loaded content cannot drive a full run.
	ErrInvalidScript = errors.New("invalid script")
	// ErrSessionNotFound is returned when an experience session is not running.
	ErrSessionNotFound = errors.New("experience session not found")
)

func invalidScript(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidScript}, args...)...)
}
