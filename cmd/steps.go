package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergev/sony9pin/deck"
	"github.com/sergev/sony9pin/logger"
	"github.com/sergev/sony9pin/ninepin"
)

var errMissingTimecode = errors.New("requires a timecode in HH:mm:ss:ff format")

// step is one command from the command line or an interactive line
type step struct {
	Token       string
	Arg         string
	Interactive bool
}

// splitPort takes the port from the first argument. When a default port is
// configured and the first argument is already a command, the default is used.
func splitPort(args []string, defaultPort string) (string, []string) {
	if len(args) == 0 {
		return defaultPort, nil
	}
	if defaultPort != "" {
		if _, ok := deck.LookupCommand(args[0]); ok || args[0] == "-" {
			return defaultPort, args
		}
	}
	return args[0], args[1:]
}

// parseSteps validates command tokens before anything is sent
func parseSteps(args []string) ([]step, error) {
	var steps []step
	for i := 0; i < len(args); i++ {
		token := args[i]
		if token == "-" {
			steps = append(steps, step{Interactive: true})
			continue
		}
		c, ok := deck.LookupCommand(token)
		if !ok {
			return nil, fmt.Errorf("%w %s", deck.ErrUnknownCommand, token)
		}
		st := step{Token: c.Name}
		if c.NeedsArg {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s %w", c.Name, errMissingTimecode)
			}
			i++
			if _, _, _, _, err := ninepin.ParseTimeCode(args[i]); err != nil {
				return nil, err
			}
			st.Arg = args[i]
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func dropInteractive(steps []step) []step {
	var list []step
	for _, st := range steps {
		if st.Interactive {
			logger.GetLogger().Error("interactive input unavailable in continuous mode")
			continue
		}
		list = append(list, st)
	}
	return list
}

// runStep waits for the deck and runs one command
func runStep(ctx context.Context, session *deck.Session, st step, w io.Writer) error {
	if err := session.WaitReady(ctx); err != nil {
		return err
	}
	out, err := session.Do(st.Token, st.Arg)
	if err != nil {
		return err
	}
	return report(w, out)
}

// report prints a command outcome. A refused command is reported and the
// sequence goes on; no reply at all fails it.
func report(w io.Writer, out deck.Outcome) error {
	res := out.Result
	switch res.State {
	case deck.Acked:
	case deck.Naked:
		fmt.Fprintf(w, "Info: %s issue: %s.\n", res.Op, res.Ack)
		return nil
	default:
		return res.Err()
	}

	switch {
	case out.Status != nil:
		printStatus(w, out.Status)
	case out.Identity != nil:
		fmt.Fprintf(w, "Info: %s.\n", out.Identity)
	case out.TimeCode != nil:
		fmt.Fprintln(w, formatTimeCode(*out.TimeCode, nil))
	case out.TimecodeUserBits != nil:
		fmt.Fprintln(w, formatTimeCode(out.TimecodeUserBits.TimeCode, &out.TimecodeUserBits.UserBits))
	default:
		fmt.Fprintf(w, "Info: %s.\n", res.Op)
	}
	return nil
}

func printStatus(w io.Writer, st *deck.StatusReport) {
	var sb strings.Builder
	sb.WriteString("Status:")
	for _, f := range st.Status.Fields() {
		v := 0
		if f.Value {
			v = 1
		}
		fmt.Fprintf(&sb, " %s=%d", f.Name, v)
	}
	fmt.Fprintln(w, sb.String())

	log := logger.GetLogger()
	if !st.MediaExist {
		log.Warn("there is no media")
	}
	if !st.RemoteEnabled {
		log.Warn("remote control is disabled")
	}
	if !st.DiskAvailable {
		log.Warn("removable media is not available")
	}
}

func formatTimeCode(tc ninepin.TimeCode, ub *ninepin.UserBits) string {
	s := fmt.Sprintf("TimeCode: %s CF: %d DF: %d", tc, flag(tc.IsCF), flag(tc.IsDF))
	if ub != nil {
		s += " UB: " + ub.String()
	}
	return s
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func printCommands(w io.Writer, prefix string) {
	fmt.Fprintf(w, "%sCommands:\n", prefix)
	fmt.Fprintf(w, "%s-: interactive (one command per line)\n", prefix)
	for _, c := range deck.Commands {
		fmt.Fprintf(w, "%s%s, %s: %s\n", prefix, c.Alias, c.Name, c.Help)
	}
}

// recoverable errors leave the deck usable for the next interactive command
func recoverable(err error) bool {
	var precondErr *deck.PreconditionError
	var formatErr *ninepin.TimecodeFormatError
	var nakErr *deck.NakError
	return errors.As(err, &precondErr) ||
		errors.As(err, &formatErr) ||
		errors.As(err, &nakErr) ||
		errors.Is(err, deck.ErrTimedOut) ||
		errors.Is(err, deck.ErrUnknownCommand) ||
		errors.Is(err, errMissingTimecode)
}

// interactive reads commands from r until end of input
func interactive(ctx context.Context, session *deck.Session, r io.Reader, w io.Writer) error {
	fmt.Fprintln(w, "Info: interactive mode.")
	printCommands(w, "Info: ")

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		steps, err := parseSteps(strings.Fields(scanner.Text()))
		if err != nil {
			fmt.Fprintf(w, "Error: %v.\n", err)
			continue
		}
		for _, st := range steps {
			if st.Interactive {
				continue
			}
			err := runStep(ctx, session, st, w)
			if err == nil {
				continue
			}
			if !recoverable(err) {
				return err
			}
			fmt.Fprintf(w, "Error: %v.\n", err)
		}
	}
	return scanner.Err()
}
