package deck

import (
	"errors"
	"fmt"

	"github.com/sergev/sony9pin/ninepin"
)

var (
	ErrLocalMode         = errors.New("the device is in local mode, switch to remote and try again")
	ErrNoMedia           = errors.New("the device does not contain a cassette, insert media and try again")
	ErrStatusUnavailable = errors.New("get device status failed")
	ErrTimedOut          = errors.New("no response from device")
	ErrNotReady          = errors.New("device is not ready")
	ErrPollAborted       = errors.New("poll aborted")
	ErrUnknownCommand    = errors.New("unknown command")
)

// PreconditionError is returned before a transport command is sent
// when the device cannot accept it.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// NakError describes a command the device refused
type NakError struct {
	Op  string
	Ack ninepin.AckResult
}

func (e *NakError) Error() string {
	return fmt.Sprintf("%s: device replied %s", e.Op, e.Ack)
}
