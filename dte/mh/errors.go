package mh

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a transmission failure. Only Unavailable
// triggers contingency handling; Rejected is terminal and must not be
// retried automatically.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	Unavailable
	Rejected
)

func (k ErrorKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

type TransmitError struct {
	Kind          ErrorKind
	Estado        string
	Descripcion   string
	Observaciones []string
	Err           error
}

func (e *TransmitError) Error() string {
	msg := e.Descripcion
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if len(e.Observaciones) > 0 {
		msg += " (" + strings.Join(e.Observaciones, "; ") + ")"
	}
	return fmt.Sprintf("mh transmission %s: %s", e.Kind, msg)
}

func (e *TransmitError) Unwrap() error {
	return e.Err
}
