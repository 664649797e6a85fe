package ninepin

import "fmt"

// Protocol-mandated serial settings: 38.4 kbaud, 8 data bits, odd parity, 1 stop bit
const BaudRate = 38400

// Function groups (high nibble of CMD1)
const (
	GROUP_SYSTEM_CONTROL = 0x00
	GROUP_SYSTEM_REPLY   = 0x10
	GROUP_TRANSPORT      = 0x20
	GROUP_PRESET         = 0x40
	GROUP_SENSE_REQUEST  = 0x60
	GROUP_SENSE_REPLY    = 0x70
)

// System control commands
const (
	CMD_DEVICE_TYPE = 0x11
)

// Transport control commands
const (
	CMD_STOP             = 0x00
	CMD_PLAY             = 0x01
	CMD_RECORD           = 0x02
	CMD_EJECT            = 0x0f
	CMD_FAST_FWD         = 0x10
	CMD_FRAME_STEP_FWD   = 0x14
	CMD_REWIND           = 0x20
	CMD_FRAME_STEP_REV   = 0x24
	CMD_PREROLL          = 0x30
	CMD_CUE_UP_WITH_DATA = 0x31
)

// Sense requests
const (
	CMD_CURRENT_TIME_SENSE = 0x0c
	CMD_STATUS_SENSE       = 0x20
)

// Current time sense selectors
const (
	TIME_SENSE_LTC_TC     = 0x01
	TIME_SENSE_VITC_TC    = 0x02
	TIME_SENSE_TIMER1     = 0x04
	TIME_SENSE_TIMER2     = 0x08
	TIME_SENSE_LTC_UB     = 0x10
	TIME_SENSE_VITC_UB    = 0x20
	TIME_SENSE_LTC_TC_UB  = TIME_SENSE_LTC_TC | TIME_SENSE_LTC_UB
	TIME_SENSE_VITC_TC_UB = TIME_SENSE_VITC_TC | TIME_SENSE_VITC_UB
)

// System replies
const (
	REPLY_ACK         = 0x01
	REPLY_NAK         = 0x12
	REPLY_DEVICE_TYPE = 0x11
)

// Sense replies (CMD2 of group 0x70)
const (
	REPLY_TIMER1           = 0x00
	REPLY_TIMER2           = 0x01
	REPLY_LTC_TIME         = 0x04
	REPLY_LTC_UB           = 0x05
	REPLY_VITC_TIME        = 0x06
	REPLY_VITC_UB          = 0x07
	REPLY_LTC_INTERPOLATED = 0x14
	REPLY_VITC_HOLD        = 0x16
	REPLY_STATUS           = 0x20
)

// Number of status bytes requested by StatusSense
const StatusFrameSize = 10

// DeviceTypeRequest asks the device for its 16-bit type code
func DeviceTypeRequest() Frame {
	return NewFrame(GROUP_SYSTEM_CONTROL, CMD_DEVICE_TYPE)
}

// StatusSense requests StatusFrameSize status bytes starting at byte 0
func StatusSense() Frame {
	return NewFrame(GROUP_SENSE_REQUEST, CMD_STATUS_SENSE, 0<<4|StatusFrameSize)
}

// CurrentTimeSense requests the timecode and/or userbits selected by sel
func CurrentTimeSense(sel byte) Frame {
	return NewFrame(GROUP_SENSE_REQUEST, CMD_CURRENT_TIME_SENSE, sel)
}

// Transport builds a data-less transport control command
func Transport(cmd byte) Frame {
	return NewFrame(GROUP_TRANSPORT, cmd)
}

// CueUpWithData builds the cue command from nibble-packed fields, as returned
// by EncodeQueryParam. Data order on the wire is frame, second, minute, hour.
func CueUpWithData(packed [4]uint8) Frame {
	return NewFrame(GROUP_TRANSPORT, CMD_CUE_UP_WITH_DATA, packed[3], packed[2], packed[1], packed[0])
}

// ResponseKind classifies a received frame
type ResponseKind int

const (
	ResponseNone ResponseKind = iota
	ResponseAck
	ResponseNak
	ResponseDeviceType
	ResponseStatus
	ResponseTimecode
	ResponseUserBits
	ResponseTimecodeUserBits
)

var responseNames = map[ResponseKind]string{
	ResponseNone:             "none",
	ResponseAck:              "ack",
	ResponseNak:              "nak",
	ResponseDeviceType:       "device type",
	ResponseStatus:           "status",
	ResponseTimecode:         "timecode",
	ResponseUserBits:         "userbits",
	ResponseTimecodeUserBits: "timecode and userbits",
}

func (k ResponseKind) String() string {
	if name, ok := responseNames[k]; ok {
		return name
	}
	return fmt.Sprintf("response(%d)", int(k))
}

// KindOf classifies the frame by its CMD1/CMD2 pair
func KindOf(f Frame) (ResponseKind, error) {
	switch f.Group() {
	case GROUP_SYSTEM_REPLY:
		switch f.Cmd2 {
		case REPLY_ACK:
			return ResponseAck, nil
		case REPLY_NAK:
			return ResponseNak, nil
		case REPLY_DEVICE_TYPE:
			return ResponseDeviceType, nil
		}
	case GROUP_SENSE_REPLY:
		switch f.Cmd2 {
		case REPLY_STATUS:
			return ResponseStatus, nil
		case REPLY_TIMER1, REPLY_TIMER2, REPLY_LTC_TIME, REPLY_VITC_TIME,
			REPLY_LTC_INTERPOLATED, REPLY_VITC_HOLD:
			if len(f.Data) >= 8 {
				return ResponseTimecodeUserBits, nil
			}
			return ResponseTimecode, nil
		case REPLY_LTC_UB, REPLY_VITC_UB:
			return ResponseUserBits, nil
		}
	}
	return ResponseNone, &ProtocolError{
		Op:  "decode frame",
		Msg: fmt.Sprintf("unknown response %02X %02X", f.Cmd1, f.Cmd2),
	}
}
