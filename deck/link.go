// Package deck implements the 9-pin session engine: one-shot command
// exchanges with preflight checks, device identity resolution, and the
// continuous poll loop that reports state changes.
package deck

import (
	"time"

	"github.com/sergev/sony9pin/ninepin"
)

// DeviceLink is the request/response channel to one device.
// Accessors report the most recently decoded reply and are only
// meaningful after PumpUntil returned true.
type DeviceLink interface {
	// Send writes a request; fails when the channel is closed or the write fails
	Send(req ninepin.Frame) error
	// PumpUntil blocks until zero or one reply frame is decoded
	PumpUntil(timeout time.Duration) (bool, error)

	LastAck() ninepin.AckResult
	Response() ninepin.ResponseKind
	Status() ninepin.Status
	TimeCode() ninepin.TimeCode
	UserBits() ninepin.UserBits
	TimecodeUserBits() ninepin.TimecodeAndUserBits
	DeviceType() uint16

	IsMediaExist() bool
	IsRemoteEnabled() bool
	IsDiskAvailable() bool
	IsStopping() bool
	Ready() bool
}
