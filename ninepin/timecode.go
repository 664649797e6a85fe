package ninepin

import (
	"fmt"
	"regexp"
	"strconv"
)

// TimeCode is a decoded hour:minute:second:frame value.
// Fields hold two decimal digits each; the device decides what is legal.
type TimeCode struct {
	Hour   uint8
	Minute uint8
	Second uint8
	Frame  uint8
	IsCF   bool // color frame
	IsDF   bool // drop frame
}

func (tc TimeCode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d;%02d", tc.Hour, tc.Minute, tc.Second, tc.Frame)
}

// UserBits is the operator-defined tag data carried with timecode
type UserBits [4]byte

func (ub UserBits) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X", ub[3], ub[2], ub[1], ub[0])
}

// TimecodeAndUserBits is returned by the LTC/VITC combined queries
type TimecodeAndUserBits struct {
	TimeCode TimeCode
	UserBits UserBits
}

// bcd converts a packed byte using only the tens bits in tensMask
func bcd(b byte, tensMask byte) uint8 {
	return ((b&tensMask)>>4)*10 + (b & 0x0f)
}

// DecodeTimeCode parses four BCD bytes: frame, second, minute, hour.
// The frame byte also carries DF (bit 6) and CF (bit 7).
func DecodeTimeCode(data []byte) (TimeCode, error) {
	if len(data) < 4 {
		return TimeCode{}, shortFrame("decode timecode", len(data), 4)
	}
	return TimeCode{
		Frame:  bcd(data[0], 0x30),
		IsDF:   data[0]&0x40 != 0,
		IsCF:   data[0]&0x80 != 0,
		Second: bcd(data[1], 0x70),
		Minute: bcd(data[2], 0x70),
		Hour:   bcd(data[3], 0x30),
	}, nil
}

// DecodeUserBits copies four raw userbits bytes
func DecodeUserBits(data []byte) (UserBits, error) {
	var ub UserBits
	if len(data) < 4 {
		return ub, shortFrame("decode userbits", len(data), 4)
	}
	copy(ub[:], data[:4])
	return ub, nil
}

// DecodeTimecodeUserBits parses a timecode followed by its userbits
func DecodeTimecodeUserBits(data []byte) (TimecodeAndUserBits, error) {
	var tcub TimecodeAndUserBits
	if len(data) < 8 {
		return tcub, shortFrame("decode timecode and userbits", len(data), 8)
	}
	tcub.TimeCode, _ = DecodeTimeCode(data[:4])
	tcub.UserBits, _ = DecodeUserBits(data[4:8])
	return tcub, nil
}

// packNibbles turns a two-digit decimal value into tens/units nibbles:
// 10*t+u + 6*t = 16*t+u. Values above 99 are not checked.
func packNibbles(v uint8) uint8 {
	return v + 6*(v/10)
}

// EncodeQueryParam converts decimal fields to the packed form the device expects.
// Result order is hour, minute, second, frame.
func EncodeQueryParam(hh, mm, ss, ff uint8) [4]uint8 {
	return [4]uint8{packNibbles(hh), packNibbles(mm), packNibbles(ss), packNibbles(ff)}
}

var timecodeSeparator = regexp.MustCompile("[:;]")

// ParseTimeCode splits an HH:MM:SS:FF string (';' accepted as separator)
// into its four decimal fields.
func ParseTimeCode(s string) (hh, mm, ss, ff uint8, err error) {
	parts := timecodeSeparator.Split(s, -1)
	if len(parts) != 4 {
		return 0, 0, 0, 0, &TimecodeFormatError{Input: s, Msg: fmt.Sprintf("expected 4 fields, got %d", len(parts))}
	}

	var fields [4]uint8
	for i, p := range parts {
		v, perr := strconv.ParseUint(p, 10, 8)
		if perr != nil || len(p) > 2 {
			return 0, 0, 0, 0, &TimecodeFormatError{Input: s, Msg: fmt.Sprintf("field %d (%q) is not a two-digit number", i+1, p)}
		}
		fields[i] = uint8(v)
	}
	return fields[0], fields[1], fields[2], fields[3], nil
}
