package deck

import (
	"time"

	"github.com/sergev/sony9pin/logger"
	"github.com/sergev/sony9pin/ninepin"
)

// reply is what the fake device does for one PumpUntil call
type reply struct {
	got    bool
	err    error
	ack    ninepin.AckResult
	kind   ninepin.ResponseKind
	status ninepin.Status
	tc     ninepin.TimeCode
	ub     ninepin.UserBits
	code   uint16
}

type fakeLink struct {
	sent     []ninepin.Frame
	replies  []reply
	sendErr  error
	notReady int // number of Ready calls answering false
	pumps    int

	ack    ninepin.AckResult
	kind   ninepin.ResponseKind
	status ninepin.Status
	tc     ninepin.TimeCode
	ub     ninepin.UserBits
	code   uint16
}

func (f *fakeLink) Send(req ninepin.Frame) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, req)
	f.ack = ninepin.NoResponse
	f.kind = ninepin.ResponseNone
	return nil
}

func (f *fakeLink) PumpUntil(time.Duration) (bool, error) {
	f.pumps++
	if len(f.replies) == 0 {
		return false, nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if !r.got || r.err != nil {
		return false, r.err
	}

	f.ack = r.ack
	f.kind = r.kind
	switch r.kind {
	case ninepin.ResponseStatus:
		f.status = r.status
	case ninepin.ResponseTimecode:
		f.tc = r.tc
	case ninepin.ResponseTimecodeUserBits:
		f.tc = r.tc
		f.ub = r.ub
	case ninepin.ResponseDeviceType:
		f.code = r.code
	}
	return true, nil
}

func (f *fakeLink) LastAck() ninepin.AckResult { return f.ack }
func (f *fakeLink) Response() ninepin.ResponseKind { return f.kind }
func (f *fakeLink) Status() ninepin.Status { return f.status }
func (f *fakeLink) TimeCode() ninepin.TimeCode { return f.tc }
func (f *fakeLink) UserBits() ninepin.UserBits { return f.ub }
func (f *fakeLink) DeviceType() uint16 { return f.code }
func (f *fakeLink) IsMediaExist() bool { return !f.status.CassetteOut }
func (f *fakeLink) IsRemoteEnabled() bool { return !f.status.Local }
func (f *fakeLink) IsDiskAvailable() bool { return !f.status.CassetteOut && !f.status.ServoRefMissing }
func (f *fakeLink) IsStopping() bool { return f.status.Stop }

func (f *fakeLink) TimecodeUserBits() ninepin.TimecodeAndUserBits {
	return ninepin.TimecodeAndUserBits{TimeCode: f.tc, UserBits: f.ub}
}

func (f *fakeLink) Ready() bool {
	if f.notReady > 0 {
		f.notReady--
		return false
	}
	return true
}

func statusReply(st ninepin.Status) reply {
	return reply{got: true, ack: ninepin.Ack, kind: ninepin.ResponseStatus, status: st}
}

func timecodeReply(tc ninepin.TimeCode) reply {
	return reply{got: true, ack: ninepin.Ack, kind: ninepin.ResponseTimecode, tc: tc}
}

func ackReply() reply {
	return reply{got: true, ack: ninepin.Ack, kind: ninepin.ResponseAck}
}

func nakReply(r ninepin.AckResult) reply {
	return reply{got: true, ack: r, kind: ninepin.ResponseNak}
}

var timeout = reply{}

func newTestSession(replies ...reply) (*Session, *fakeLink) {
	link := &fakeLink{replies: replies}
	return NewSession(link, Options{Timeout: time.Millisecond, ReadyAttempts: 3, Logger: logger.Discard()}), link
}
