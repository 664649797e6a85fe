// Package link talks to a single 9-pin device over a serial port.
//
// A Link sends one request frame at a time and decodes the reply into the
// last-received values exposed by its accessors. It never interprets the
// meaning of a reply beyond its frame type; that is left to package deck.
package link

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sergev/sony9pin/logger"
	"github.com/sergev/sony9pin/ninepin"

	"go.bug.st/serial"
)

// Default response window for one exchange
const DefaultTimeout = 1000 * time.Millisecond

// Upper bound for a single blocking read while waiting for a reply
const readSlice = 20 * time.Millisecond

// Port is the subset of serial.Port used by Link
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Options configure Open
type Options struct {
	BaudRate int           // 0 means ninepin.BaudRate
	Timeout  time.Duration // response window used by Ready, 0 means DefaultTimeout
	Logger   logger.Logger
}

// Link wraps a serial port connection to a 9-pin device
type Link struct {
	port    Port
	name    string
	log     logger.Logger
	window  time.Duration
	closed  bool
	buf     []byte
	pending bool
	sentAt  time.Time
	now     func() time.Time

	// Values of the most recently decoded reply
	ack        bool
	nak        ninepin.NakFlags
	kind       ninepin.ResponseKind
	status     ninepin.Status
	timecode   ninepin.TimeCode
	userbits   ninepin.UserBits
	deviceType uint16
}

// Open resolves the port identifier (a name or an index into the list of
// serial ports) and opens it with 9-pin settings: 8 data bits, odd parity, 1 stop bit.
func Open(identifier string, opts Options) (*Link, error) {
	name, err := Resolve(identifier)
	if err != nil {
		return nil, err
	}

	baud := opts.BaudRate
	if baud == 0 {
		baud = ninepin.BaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.OddParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, &LinkError{Op: "open", Port: name, Err: err}
	}

	return New(port, name, opts), nil
}

// New wraps an already opened port
func New(port Port, name string, opts Options) *Link {
	l := &Link{
		port:   port,
		name:   name,
		log:    opts.Logger,
		window: opts.Timeout,
		now:    time.Now,
	}
	if l.window <= 0 {
		l.window = DefaultTimeout
	}
	if l.log == nil {
		l.log = logger.GetLogger()
	}
	l.log = l.log.With("port", name)
	return l
}

// Name returns the resolved port name
func (l *Link) Name() string {
	return l.name
}

// Close releases the serial port
func (l *Link) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.port.Close(); err != nil {
		return &LinkError{Op: "close", Port: l.name, Err: err}
	}
	return nil
}

// Send writes one request frame, discarding any stale input first
func (l *Link) Send(req ninepin.Frame) error {
	if l.closed {
		return &LinkError{Op: "send", Port: l.name, Err: ErrClosed}
	}

	packet, err := req.Encode()
	if err != nil {
		return &LinkError{Op: "send", Port: l.name, Err: err}
	}

	if err := l.port.ResetInputBuffer(); err != nil {
		return l.portError("reset input", err)
	}
	l.buf = l.buf[:0]

	l.log.Debug("tx", "frame", fmt.Sprintf("% X", packet))
	if _, err := l.port.Write(packet); err != nil {
		return l.portError("send", err)
	}

	l.pending = true
	l.sentAt = l.now()
	l.ack = false
	l.nak = 0
	l.kind = ninepin.ResponseNone
	return nil
}

// PumpUntil reads until one complete reply frame is decoded or timeout expires.
// Returns false when no frame arrived in time. A frame that fails to decode
// is a *ninepin.ProtocolError; the previously decoded values are kept.
func (l *Link) PumpUntil(timeout time.Duration) (bool, error) {
	if l.closed {
		return false, &LinkError{Op: "receive", Port: l.name, Err: ErrClosed}
	}

	deadline := l.now().Add(timeout)
	tmp := make([]byte, 32)
	for {
		frame, n, err := ninepin.DecodeFrame(l.buf)
		if n > 0 {
			l.buf = l.buf[n:]
			l.pending = false
			if err != nil {
				return false, err
			}
			l.log.Debug("rx", "frame", frame.String())
			return true, l.dispatch(frame)
		}

		remaining := deadline.Sub(l.now())
		if remaining <= 0 {
			return false, nil
		}
		if err := l.port.SetReadTimeout(min(remaining, readSlice)); err != nil {
			return false, l.portError("set read timeout", err)
		}
		n, err = l.port.Read(tmp)
		if err != nil && !errors.Is(err, io.EOF) {
			return false, l.portError("receive", err)
		}
		l.buf = append(l.buf, tmp[:n]...)
	}
}

// dispatch stores the payload of a decoded reply
func (l *Link) dispatch(frame ninepin.Frame) error {
	kind, err := ninepin.KindOf(frame)
	if err != nil {
		return err
	}

	l.ack = false
	l.nak = 0
	l.kind = kind

	switch kind {
	case ninepin.ResponseAck:
		l.ack = true

	case ninepin.ResponseNak:
		if len(frame.Data) < 1 {
			return &ninepin.ProtocolError{Op: "decode nak", Msg: "missing nak flags"}
		}
		l.nak = ninepin.NakFlags(frame.Data[0])

	case ninepin.ResponseDeviceType:
		if len(frame.Data) < 2 {
			return &ninepin.ProtocolError{Op: "decode device type", Msg: fmt.Sprintf("frame too short (%d bytes, expected 2)", len(frame.Data))}
		}
		l.deviceType = uint16(frame.Data[0])<<8 | uint16(frame.Data[1])
		l.ack = true

	case ninepin.ResponseStatus:
		st, err := ninepin.DecodeStatus(frame.Data)
		if err != nil {
			return err
		}
		l.status = st
		l.ack = true

	case ninepin.ResponseTimecode:
		tc, err := ninepin.DecodeTimeCode(frame.Data)
		if err != nil {
			return err
		}
		l.timecode = tc
		l.ack = true

	case ninepin.ResponseUserBits:
		ub, err := ninepin.DecodeUserBits(frame.Data)
		if err != nil {
			return err
		}
		l.userbits = ub
		l.ack = true

	case ninepin.ResponseTimecodeUserBits:
		tcub, err := ninepin.DecodeTimecodeUserBits(frame.Data)
		if err != nil {
			return err
		}
		l.timecode = tcub.TimeCode
		l.userbits = tcub.UserBits
		l.ack = true
	}
	return nil
}

// LastAck classifies the most recent reply
func (l *Link) LastAck() ninepin.AckResult {
	return ninepin.Classify(l.ack, l.nak)
}

// Response returns the type of the most recent reply
func (l *Link) Response() ninepin.ResponseKind {
	return l.kind
}

func (l *Link) Status() ninepin.Status {
	return l.status
}

func (l *Link) TimeCode() ninepin.TimeCode {
	return l.timecode
}

func (l *Link) UserBits() ninepin.UserBits {
	return l.userbits
}

func (l *Link) TimecodeUserBits() ninepin.TimecodeAndUserBits {
	return ninepin.TimecodeAndUserBits{TimeCode: l.timecode, UserBits: l.userbits}
}

func (l *Link) DeviceType() uint16 {
	return l.deviceType
}

// IsMediaExist reports a cassette or disk in the device
func (l *Link) IsMediaExist() bool {
	return !l.status.CassetteOut
}

// IsRemoteEnabled reports the device accepts serial control
func (l *Link) IsRemoteEnabled() bool {
	return !l.status.Local
}

// IsDiskAvailable reports removable media that is present and referenced
func (l *Link) IsDiskAvailable() bool {
	return !l.status.CassetteOut && !l.status.ServoRefMissing
}

func (l *Link) IsStopping() bool {
	return l.status.Stop
}

// Ready reports that no reply is outstanding, or the response window
// of the last request has passed.
func (l *Link) Ready() bool {
	return !l.pending || l.now().Sub(l.sentAt) >= l.window
}
