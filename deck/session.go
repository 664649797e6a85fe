package deck

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sergev/sony9pin/devices"
	"github.com/sergev/sony9pin/logger"
	"github.com/sergev/sony9pin/ninepin"
)

// Defaults for Options
const (
	DefaultTimeout       = 1000 * time.Millisecond
	DefaultReadyAttempts = 30
)

// State of one command exchange
type State int

const (
	Idle State = iota
	Sent
	AwaitingResponse
	Acked
	Naked
	TimedOut
)

var stateNames = map[State]string{
	Idle:             "idle",
	Sent:             "sent",
	AwaitingResponse: "awaiting response",
	Acked:            "acked",
	Naked:            "naked",
	TimedOut:         "timed out",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result of one exchange
type Result struct {
	Op    string
	State State
	Ack   ninepin.AckResult
}

// Err returns nil for an acknowledged exchange, a *NakError for a refused
// one, and ErrTimedOut when no reply arrived.
func (r Result) Err() error {
	switch r.State {
	case Acked:
		return nil
	case Naked:
		return &NakError{Op: r.Op, Ack: r.Ack}
	case TimedOut:
		return fmt.Errorf("%s: %w", r.Op, ErrTimedOut)
	}
	return fmt.Errorf("%s: exchange not completed (%s)", r.Op, r.State)
}

// Options configure a Session
type Options struct {
	Timeout       time.Duration // response window per exchange
	ReadyAttempts int           // bound for WaitReady
	Devices       *devices.Table
	Logger        logger.Logger
}

// Session drives request/response exchanges over one DeviceLink
type Session struct {
	link          DeviceLink
	timeout       time.Duration
	readyAttempts int
	devices       *devices.Table
	log           logger.Logger
	state         State
}

// NewSession creates a session owning the given link
func NewSession(link DeviceLink, opts Options) *Session {
	s := &Session{
		link:          link,
		timeout:       opts.Timeout,
		readyAttempts: opts.ReadyAttempts,
		devices:       opts.Devices,
		log:           opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.readyAttempts <= 0 {
		s.readyAttempts = DefaultReadyAttempts
	}
	if s.log == nil {
		s.log = logger.GetLogger()
	}
	return s
}

// State returns the state of the last exchange
func (s *Session) State() State {
	return s.state
}

// exchange sends one request and waits for its reply
func (s *Session) exchange(op string, req ninepin.Frame) (Result, error) {
	res := Result{Op: op, State: Idle, Ack: ninepin.NoResponse}
	s.state = Idle

	s.log.Debug("send", "op", op)
	if err := s.link.Send(req); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	s.state = Sent

	s.log.Debug("awaiting response", "op", op, "timeout", s.timeout)
	s.state = AwaitingResponse
	got, err := s.link.PumpUntil(s.timeout)
	if err != nil {
		s.state = Idle
		res.State = Idle
		return res, fmt.Errorf("%s: %w", op, err)
	}
	if !got {
		s.state = TimedOut
		res.State = TimedOut
		s.log.Warn("no response", "op", op, "timeout", s.timeout)
		return res, nil
	}

	res.Ack = s.link.LastAck()
	if res.Ack == ninepin.Ack {
		res.State = Acked
	} else {
		res.State = Naked
		s.log.Warn("command refused", "op", op, "reason", res.Ack.String())
	}
	s.state = res.State
	return res, nil
}

// query is an exchange whose positive reply must be one of the given kinds
func (s *Session) query(op string, req ninepin.Frame, want ...ninepin.ResponseKind) (Result, error) {
	res, err := s.exchange(op, req)
	if err != nil || res.State != Acked {
		return res, err
	}
	if kind := s.link.Response(); !slices.Contains(want, kind) {
		return res, &ninepin.ProtocolError{
			Op:  op,
			Msg: fmt.Sprintf("unexpected %s reply", kind),
		}
	}
	return res, nil
}

// preflight requires remote mode, then media, before a transport command
func (s *Session) preflight(op string) error {
	res, err := s.query("status", ninepin.StatusSense(), ninepin.ResponseStatus)
	if err != nil {
		return err
	}
	if res.State != Acked {
		return &PreconditionError{Op: op, Err: fmt.Errorf("%w: %v", ErrStatusUnavailable, res.Err())}
	}
	if !s.link.IsRemoteEnabled() {
		return &PreconditionError{Op: op, Err: ErrLocalMode}
	}
	if !s.link.IsMediaExist() {
		return &PreconditionError{Op: op, Err: ErrNoMedia}
	}
	return nil
}

// transport runs the preflight checks and sends a transport command
func (s *Session) transport(op string, req ninepin.Frame) (Result, error) {
	if err := s.preflight(op); err != nil {
		return Result{Op: op, State: Idle, Ack: ninepin.NoResponse}, err
	}
	s.log.Debug("transport", "op", op)
	return s.exchange(op, req)
}

func (s *Session) Play() (Result, error) {
	return s.transport("play", ninepin.Transport(ninepin.CMD_PLAY))
}

func (s *Session) Stop() (Result, error) {
	return s.transport("stop", ninepin.Transport(ninepin.CMD_STOP))
}

func (s *Session) Rewind() (Result, error) {
	return s.transport("rewind", ninepin.Transport(ninepin.CMD_REWIND))
}

func (s *Session) FastForward() (Result, error) {
	return s.transport("fast_forward", ninepin.Transport(ninepin.CMD_FAST_FWD))
}

func (s *Session) Eject() (Result, error) {
	return s.transport("eject", ninepin.Transport(ninepin.CMD_EJECT))
}

func (s *Session) FrameStepForward() (Result, error) {
	return s.transport("frame_step_forward", ninepin.Transport(ninepin.CMD_FRAME_STEP_FWD))
}

func (s *Session) FrameStepReverse() (Result, error) {
	return s.transport("frame_step_reverse", ninepin.Transport(ninepin.CMD_FRAME_STEP_REV))
}

// CueUpWithData cues the deck to the given decimal timecode fields
func (s *Session) CueUpWithData(hh, mm, ss, ff uint8) (Result, error) {
	return s.transport("cue_up_with_data", ninepin.CueUpWithData(ninepin.EncodeQueryParam(hh, mm, ss, ff)))
}

// StatusReport is a decoded status with the derived availability checks
type StatusReport struct {
	Status        ninepin.Status
	MediaExist    bool
	RemoteEnabled bool
	DiskAvailable bool
}

// Status queries the device status; no preflight
func (s *Session) Status() (StatusReport, Result, error) {
	res, err := s.query("status", ninepin.StatusSense(), ninepin.ResponseStatus)
	if err != nil || res.State != Acked {
		return StatusReport{}, res, err
	}
	return StatusReport{
		Status:        s.link.Status(),
		MediaExist:    s.link.IsMediaExist(),
		RemoteEnabled: s.link.IsRemoteEnabled(),
		DiskAvailable: s.link.IsDiskAvailable(),
	}, res, nil
}

// DeviceType queries the device type code and resolves its identity
func (s *Session) DeviceType() (Identity, Result, error) {
	res, err := s.query("type", ninepin.DeviceTypeRequest(), ninepin.ResponseDeviceType)
	if err != nil || res.State != Acked {
		return Identity{}, res, err
	}
	return Resolve(s.link.DeviceType(), s.devices), res, nil
}

func (s *Session) timer(op string, sel byte) (ninepin.TimeCode, Result, error) {
	res, err := s.query(op, ninepin.CurrentTimeSense(sel), ninepin.ResponseTimecode, ninepin.ResponseTimecodeUserBits)
	if err != nil || res.State != Acked {
		return ninepin.TimeCode{}, res, err
	}
	return s.link.TimeCode(), res, nil
}

func (s *Session) Timer1() (ninepin.TimeCode, Result, error) {
	return s.timer("timer1", ninepin.TIME_SENSE_TIMER1)
}

func (s *Session) Timer2() (ninepin.TimeCode, Result, error) {
	return s.timer("timer2", ninepin.TIME_SENSE_TIMER2)
}

func (s *Session) timecodeUserBits(op string, sel byte) (ninepin.TimecodeAndUserBits, Result, error) {
	res, err := s.query(op, ninepin.CurrentTimeSense(sel), ninepin.ResponseTimecodeUserBits)
	if err != nil || res.State != Acked {
		return ninepin.TimecodeAndUserBits{}, res, err
	}
	return s.link.TimecodeUserBits(), res, nil
}

// LTC queries linear timecode with its userbits
func (s *Session) LTC() (ninepin.TimecodeAndUserBits, Result, error) {
	return s.timecodeUserBits("ltc_tc_ub", ninepin.TIME_SENSE_LTC_TC_UB)
}

// VITC queries vertical interval timecode with its userbits
func (s *Session) VITC() (ninepin.TimecodeAndUserBits, Result, error) {
	return s.timecodeUserBits("vitc_tc_ub", ninepin.TIME_SENSE_VITC_TC_UB)
}

// WaitReady pumps in one-second increments until the device is ready,
// a frame arrives, or the attempt bound is reached.
func (s *Session) WaitReady(ctx context.Context) error {
	for attempt := 0; !s.link.Ready(); attempt++ {
		if attempt >= s.readyAttempts {
			return fmt.Errorf("%w after %d attempts", ErrNotReady, attempt)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.log.Debug("deck is not ready, waiting", "attempt", attempt+1)
		got, err := s.link.PumpUntil(DefaultTimeout)
		if err != nil {
			return fmt.Errorf("wait ready: %w", err)
		}
		if got {
			break
		}
	}
	return nil
}
