package ninepin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameEncode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  []byte
	}{
		{"play", Transport(CMD_PLAY), []byte{0x20, 0x01, 0x21}},
		{"stop", Transport(CMD_STOP), []byte{0x20, 0x00, 0x20}},
		{"device type", DeviceTypeRequest(), []byte{0x00, 0x11, 0x11}},
		{"status sense", StatusSense(), []byte{0x61, 0x20, 0x0a, 0x8b}},
		{"timer1", CurrentTimeSense(TIME_SENSE_TIMER1), []byte{0x61, 0x0c, 0x04, 0x71}},
		{"cue", CueUpWithData(EncodeQueryParam(1, 2, 3, 4)), []byte{0x24, 0x31, 0x04, 0x03, 0x02, 0x01, 0x5f}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.frame.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrameEncodeTooLong(t *testing.T) {
	_, err := NewFrame(GROUP_TRANSPORT, CMD_PLAY, make([]byte, MaxDataLen+1)...).Encode()
	assert.Error(t, err)
}

func TestDecodeFrame(t *testing.T) {
	// ACK followed by the first byte of another frame
	buf := []byte{0x10, 0x01, 0x11, 0x74}
	frame, n, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	kind, err := KindOf(frame)
	require.NoError(t, err)
	assert.Equal(t, ResponseAck, kind)

	// Partial frame
	_, n, err = DecodeFrame(buf[3:])
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Empty buffer
	_, n, err = DecodeFrame(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDecodeFrameChecksum(t *testing.T) {
	_, n, err := DecodeFrame([]byte{0x10, 0x01, 0x12})
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, 3, n)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		cmd1, cmd2 byte
		data       []byte
		want       ResponseKind
	}{
		{0x11, REPLY_NAK, []byte{0x01}, ResponseNak},
		{0x12, REPLY_DEVICE_TYPE, []byte{0x20, 0xa1}, ResponseDeviceType},
		{0x7a, REPLY_STATUS, make([]byte, 10), ResponseStatus},
		{0x74, REPLY_TIMER1, make([]byte, 4), ResponseTimecode},
		{0x74, REPLY_LTC_UB, make([]byte, 4), ResponseUserBits},
		{0x78, REPLY_VITC_TIME, make([]byte, 8), ResponseTimecodeUserBits},
	}
	for _, tt := range tests {
		kind, err := KindOf(Frame{Cmd1: tt.cmd1, Cmd2: tt.cmd2, Data: tt.data})
		require.NoError(t, err)
		assert.Equal(t, tt.want, kind, "%02X %02X", tt.cmd1, tt.cmd2)
	}

	_, err := KindOf(Frame{Cmd1: 0x20, Cmd2: 0x01})
	assert.Error(t, err)
}
