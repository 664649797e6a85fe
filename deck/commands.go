package deck

import (
	"fmt"

	"github.com/sergev/sony9pin/ninepin"
)

// Command is one entry of the command vocabulary
type Command struct {
	Name      string
	Alias     string // single-character form
	Help      string
	NeedsArg  bool // takes an HH:MM:SS:FF timecode
	Transport bool // runs the remote/media preflight
}

// Commands lists the vocabulary in menu order
var Commands = []Command{
	{Name: "eject", Alias: "e", Help: "eject", Transport: true},
	{Name: "ff", Alias: "f", Help: "fast_forward", Transport: true},
	{Name: "step-fwd", Alias: "x", Help: "frame_step_forward", Transport: true},
	{Name: "step-rev", Alias: "w", Help: "frame_step_reverse", Transport: true},
	{Name: "play", Alias: "p", Help: "play", Transport: true},
	{Name: "rewind", Alias: "r", Help: "rewind", Transport: true},
	{Name: "stop", Alias: "s", Help: "stop", Transport: true},
	{Name: "cue", Alias: "c", Help: "cue_up_with_data <timecode in HH:mm:ss:ff format>", NeedsArg: true, Transport: true},
	{Name: "status", Alias: "0", Help: "status"},
	{Name: "type", Alias: "1", Help: "type"},
	{Name: "timer1", Alias: "2", Help: "timer1"},
	{Name: "timer2", Alias: "3", Help: "timer2"},
	{Name: "ltc", Alias: "4", Help: "ltc_tc_ub"},
	{Name: "vitc", Alias: "5", Help: "vitc_tc_ub"},
}

// LookupCommand finds a command by name or alias
func LookupCommand(token string) (Command, bool) {
	for _, c := range Commands {
		if token == c.Name || token == c.Alias {
			return c, true
		}
	}
	return Command{}, false
}

// Outcome carries whatever a command produced; unused fields are nil
type Outcome struct {
	Command          Command
	Result           Result
	Status           *StatusReport
	Identity         *Identity
	TimeCode         *ninepin.TimeCode
	TimecodeUserBits *ninepin.TimecodeAndUserBits
}

// Do runs one command of the vocabulary. arg is the timecode for "cue".
// Naks and timeouts are reported in Outcome.Result, not as errors.
func (s *Session) Do(token, arg string) (Outcome, error) {
	cmd, ok := LookupCommand(token)
	if !ok {
		return Outcome{}, fmt.Errorf("%w %s", ErrUnknownCommand, token)
	}
	out := Outcome{Command: cmd}

	var err error
	switch cmd.Name {
	case "eject":
		out.Result, err = s.Eject()
	case "ff":
		out.Result, err = s.FastForward()
	case "step-fwd":
		out.Result, err = s.FrameStepForward()
	case "step-rev":
		out.Result, err = s.FrameStepReverse()
	case "play":
		out.Result, err = s.Play()
	case "rewind":
		out.Result, err = s.Rewind()
	case "stop":
		out.Result, err = s.Stop()
	case "cue":
		hh, mm, ss, ff, perr := ninepin.ParseTimeCode(arg)
		if perr != nil {
			return out, perr
		}
		out.Result, err = s.CueUpWithData(hh, mm, ss, ff)
	case "status":
		var st StatusReport
		st, out.Result, err = s.Status()
		if err == nil && out.Result.State == Acked {
			out.Status = &st
		}
	case "type":
		var id Identity
		id, out.Result, err = s.DeviceType()
		if err == nil && out.Result.State == Acked {
			out.Identity = &id
		}
	case "timer1", "timer2":
		var tc ninepin.TimeCode
		if cmd.Name == "timer1" {
			tc, out.Result, err = s.Timer1()
		} else {
			tc, out.Result, err = s.Timer2()
		}
		if err == nil && out.Result.State == Acked {
			out.TimeCode = &tc
		}
	case "ltc", "vitc":
		var tcub ninepin.TimecodeAndUserBits
		if cmd.Name == "ltc" {
			tcub, out.Result, err = s.LTC()
		} else {
			tcub, out.Result, err = s.VITC()
		}
		if err == nil && out.Result.State == Acked {
			out.TimecodeUserBits = &tcub
		}
	}
	return out, err
}
