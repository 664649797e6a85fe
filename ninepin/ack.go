package ninepin

import "fmt"

// AckResult is the outcome of one completed exchange
type AckResult int

const (
	Ack AckResult = iota
	NakUnknownCommand
	NakChecksumError
	NakParityError
	NakBufferOverrun
	NakFramingError
	NakTimeout
	NoResponse
)

var ackNames = map[AckResult]string{
	Ack:               "ack",
	NakUnknownCommand: "nak: unknown command",
	NakChecksumError:  "nak: checksum error",
	NakParityError:    "nak: parity error",
	NakBufferOverrun:  "nak: buffer overrun",
	NakFramingError:   "nak: framing error",
	NakTimeout:        "nak: timeout",
	NoResponse:        "no response",
}

func (r AckResult) String() string {
	if name, ok := ackNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ack(%d)", int(r))
}

// IsNak reports whether the result is one of the negative acknowledgments
func (r AckResult) IsNak() bool {
	return r >= NakUnknownCommand && r <= NakTimeout
}

// NakFlags is the data byte of a NAK reply
type NakFlags byte

// NAK reply bits
const (
	NAK_UNKNOWN_COMMAND NakFlags = 0x01
	NAK_CHECKSUM_ERROR  NakFlags = 0x04
	NAK_PARITY_ERROR    NakFlags = 0x10
	NAK_BUFFER_OVERRUN  NakFlags = 0x20
	NAK_FRAMING_ERROR   NakFlags = 0x40
	NAK_TIMEOUT         NakFlags = 0x80
)

// Evaluation order when several bits are set at once
var nakPriority = []struct {
	flag   NakFlags
	result AckResult
}{
	{NAK_UNKNOWN_COMMAND, NakUnknownCommand},
	{NAK_CHECKSUM_ERROR, NakChecksumError},
	{NAK_PARITY_ERROR, NakParityError},
	{NAK_BUFFER_OVERRUN, NakBufferOverrun},
	{NAK_FRAMING_ERROR, NakFramingError},
	{NAK_TIMEOUT, NakTimeout},
}

// Classify maps the ack state and nak bits of a reply to exactly one result.
// A positive acknowledgment wins over any nak bit.
func Classify(ack bool, nak NakFlags) AckResult {
	if ack {
		return Ack
	}
	for _, p := range nakPriority {
		if nak&p.flag != 0 {
			return p.result
		}
	}
	return NoResponse
}
