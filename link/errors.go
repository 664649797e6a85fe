package link

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// ErrClosed is returned when the link is used after Close or after the port went away
var ErrClosed = errors.New("serial port is not open")

// LinkError reports a channel that is not open or a failed read/write
type LinkError struct {
	Op   string
	Port string
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// portError wraps a serial error and marks the link closed when the
// device disappeared underneath it.
func (l *Link) portError(op string, err error) error {
	if lost(err) {
		l.closed = true
	}
	return &LinkError{Op: op, Port: l.name, Err: err}
}

// lost reports serial error codes meaning the port is gone.
// The serial package returns PortError both by value and by pointer.
func lost(err error) bool {
	var code serial.PortErrorCode
	var portErr serial.PortError
	var portErrPtr *serial.PortError
	switch {
	case errors.As(err, &portErr):
		code = portErr.Code()
	case errors.As(err, &portErrPtr):
		code = portErrPtr.Code()
	default:
		return false
	}
	switch code {
	case serial.PortClosed, serial.PortNotFound, serial.InvalidSerialPort:
		return true
	}
	return false
}
