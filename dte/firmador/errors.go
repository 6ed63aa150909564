package firmador

import (
	"fmt"
	"strings"
)

// SignError is the terminal signing failure, carrying the remote
// diagnostic when the firmador produced one.
type SignError struct {
	Codigo  string
	Mensaje []string
	Err     error

	// structured marks a rejection the remote service produced itself,
	// as opposed to a transport failure. Only structured rejections of
	// the primary shape trigger the single legacy retry.
	structured bool
}

func (e *SignError) Error() string {
	msg := strings.Join(e.Mensaje, "; ")
	if e.Codigo != "" {
		return fmt.Sprintf("firmador error %s: %s", e.Codigo, msg)
	}
	return fmt.Sprintf("firmador error: %s", msg)
}

func (e *SignError) Unwrap() error {
	return e.Err
}
