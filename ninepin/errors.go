package ninepin

import "fmt"

// ProtocolError reports a received frame that could not be decoded:
// bad checksum, unknown response code or a payload of the wrong size.
type ProtocolError struct {
	Op  string
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("9-pin protocol error: %s: %s", e.Op, e.Msg)
}

// shortFrame returns a ProtocolError for a payload smaller than expected
func shortFrame(op string, got, want int) error {
	return &ProtocolError{
		Op:  op,
		Msg: fmt.Sprintf("frame too short (%d bytes, expected %d)", got, want),
	}
}

// TimecodeFormatError reports operator input that is not HH:MM:SS:FF
type TimecodeFormatError struct {
	Input string
	Msg   string
}

func (e *TimecodeFormatError) Error() string {
	return fmt.Sprintf("invalid timecode %q: %s", e.Input, e.Msg)
}
