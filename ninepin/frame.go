package ninepin

import (
	"fmt"
)

// Maximum number of data bytes in one frame (low nibble of CMD1)
const MaxDataLen = 15

// Frame is one 9-pin command block: [CMD1][CMD2][DATA...][CHECKSUM]
// CMD1 high nibble selects the function group, low nibble is the data count.
type Frame struct {
	Cmd1 byte // function group, data count is filled in by Encode
	Cmd2 byte
	Data []byte
}

// NewFrame builds a frame for the given function group and command code
func NewFrame(group, cmd2 byte, data ...byte) Frame {
	return Frame{Cmd1: group & 0xf0, Cmd2: cmd2, Data: data}
}

// Group returns the function group (high nibble of CMD1)
func (f Frame) Group() byte {
	return f.Cmd1 & 0xf0
}

// Encode serializes the frame and appends the checksum
func (f Frame) Encode() ([]byte, error) {
	if len(f.Data) > MaxDataLen {
		return nil, fmt.Errorf("data length %d exceeds maximum %d", len(f.Data), MaxDataLen)
	}

	packet := make([]byte, 3+len(f.Data))
	packet[0] = f.Group() | byte(len(f.Data))
	packet[1] = f.Cmd2
	copy(packet[2:], f.Data)
	packet[len(packet)-1] = checksum(packet[:len(packet)-1])
	return packet, nil
}

func (f Frame) String() string {
	return fmt.Sprintf("%02X %02X % X", f.Group()|byte(len(f.Data)), f.Cmd2, f.Data)
}

// checksum is the 8-bit sum of all bytes before it
func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// FrameLen returns the total length of the frame starting at buf[0],
// or 0 when not even CMD1 is available.
func FrameLen(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	return 3 + int(buf[0]&0x0f)
}

// DecodeFrame parses one frame from the start of buf.
// Returns the frame and the number of bytes consumed. When buf holds only part
// of a frame, n is 0 and err is nil: the caller should read more bytes.
func DecodeFrame(buf []byte) (frame Frame, n int, err error) {
	size := FrameLen(buf)
	if size == 0 || len(buf) < size {
		return Frame{}, 0, nil
	}

	sum := checksum(buf[:size-1])
	if sum != buf[size-1] {
		return Frame{}, size, &ProtocolError{
			Op:  "decode frame",
			Msg: fmt.Sprintf("checksum mismatch (0x%02x != 0x%02x) in % X", sum, buf[size-1], buf[:size]),
		}
	}

	frame = Frame{
		Cmd1: buf[0],
		Cmd2: buf[1],
		Data: append([]byte(nil), buf[2:size-1]...),
	}
	return frame, size, nil
}
