package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sergev/sony9pin/logger"
	"github.com/sergev/sony9pin/ninepin"
)

// Default bound on consecutive failed poll iterations
const DefaultMaxFailures = 10

// ISO-8601 with milliseconds and zone offset
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Sample is one status + timer1 reading
type Sample struct {
	TimeCode ninepin.TimeCode
	Status   ninepin.Status
}

// FieldChange is one field that differs from the previous sample
type FieldChange struct {
	Name  string
	Value string
}

// Change is emitted once per iteration when at least one field changed
type Change struct {
	Time   time.Time
	Fields []FieldChange
}

func (c Change) String() string {
	var sb strings.Builder
	sb.WriteString(c.Time.Format(TimestampFormat))
	for _, f := range c.Fields {
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		sb.WriteString("=")
		sb.WriteString(f.Value)
	}
	return sb.String()
}

// PollState is the last observed sample
type PollState struct {
	Sample Sample
	valid  bool
}

// fields flattens a sample into comparable name/value pairs
func (s Sample) fields() []FieldChange {
	tc := s.TimeCode
	list := []FieldChange{
		{"hour", fmt.Sprintf("%02d", tc.Hour)},
		{"minute", fmt.Sprintf("%02d", tc.Minute)},
		{"second", fmt.Sprintf("%02d", tc.Second)},
		{"frame", fmt.Sprintf("%02d", tc.Frame)},
		{"cf", flag(tc.IsCF)},
		{"df", flag(tc.IsDF)},
	}
	for _, f := range s.Status.Fields() {
		list = append(list, FieldChange{f.Name, flag(f.Value)})
	}
	return list
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// PollOptions configure a Poller
type PollOptions struct {
	Interval    time.Duration // pause between iterations, 0 polls back to back
	MaxFailures int           // consecutive failed iterations before Run gives up
	Logger      logger.Logger
}

// Poller repeatedly samples the deck and reports what changed
type Poller struct {
	session     *Session
	state       PollState
	interval    time.Duration
	maxFailures int
	log         logger.Logger
	now         func() time.Time
}

// NewPoller creates a poller over the session
func NewPoller(s *Session, opts PollOptions) *Poller {
	p := &Poller{
		session:     s,
		interval:    opts.Interval,
		maxFailures: opts.MaxFailures,
		log:         opts.Logger,
		now:         time.Now,
	}
	if p.maxFailures <= 0 {
		p.maxFailures = DefaultMaxFailures
	}
	if p.log == nil {
		p.log = logger.GetLogger()
	}
	return p
}

// State returns the last observed sample
func (p *Poller) State() PollState {
	return p.state
}

// Observe compares the sample against the poll state field by field.
// The first observation reports every field. When anything changed the sample
// becomes the new state. stop is set when the deck reports the stop flag.
func (p *Poller) Observe(sample Sample, now time.Time) (change Change, emit bool, stop bool) {
	change.Time = now
	current := sample.fields()
	if !p.state.valid {
		change.Fields = current
	} else {
		previous := p.state.Sample.fields()
		for i, f := range current {
			if f.Value != previous[i].Value {
				change.Fields = append(change.Fields, f)
			}
		}
	}

	emit = len(change.Fields) > 0
	if emit {
		p.state = PollState{Sample: sample, valid: true}
	}
	return change, emit, sample.Status.Stop
}

// sample issues the status and timer1 queries
func (p *Poller) sample() (Sample, error) {
	st, res, err := p.session.Status()
	if err != nil {
		return Sample{}, err
	}
	if res.State != Acked {
		return Sample{}, res.Err()
	}

	tc, res, err := p.session.Timer1()
	if err != nil {
		return Sample{}, err
	}
	if res.State != Acked {
		return Sample{}, res.Err()
	}
	return Sample{TimeCode: tc, Status: st.Status}, nil
}

// Run polls until the deck reports stop, the context is done, or
// MaxFailures consecutive iterations fail. A failed iteration keeps the
// previous state.
func (p *Poller) Run(ctx context.Context, emit func(Change)) error {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sample, err := p.sample()
		if err != nil {
			failures++
			p.log.Error("poll failed", "error", err, "failures", failures)
			if failures >= p.maxFailures {
				return fmt.Errorf("%w after %d consecutive failures: %w", ErrPollAborted, failures, err)
			}
		} else {
			failures = 0
			change, changed, stop := p.Observe(sample, p.now())
			if changed {
				emit(change)
			}
			if stop {
				return nil
			}
		}

		if p.interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.interval):
			}
		}
	}
}
