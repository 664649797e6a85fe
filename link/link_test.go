package link

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sergev/sony9pin/logger"
	"github.com/sergev/sony9pin/ninepin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

// fakePort answers each write with the next scripted reply
type fakePort struct {
	written  bytes.Buffer
	replies  [][]byte
	input    []byte
	writeErr error
	closed   bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written.Write(b)
	if len(p.replies) > 0 {
		p.input = append(p.input, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

// Read hands out at most two bytes at a time to exercise reassembly
func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.input) == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(b[:min(len(b), 2)], p.input)
	p.input = p.input[n:]
	return n, nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }

func (p *fakePort) ResetInputBuffer() error { return nil }

func reply(cmd1, cmd2 byte, data ...byte) []byte {
	packet, err := ninepin.Frame{Cmd1: cmd1, Cmd2: cmd2, Data: data}.Encode()
	if err != nil {
		panic(err)
	}
	return packet
}

func newTestLink(replies ...[]byte) (*Link, *fakePort) {
	port := &fakePort{replies: replies}
	return New(port, "fake", Options{Logger: logger.Discard()}), port
}

func TestSendPumpAck(t *testing.T) {
	l, port := newTestLink(reply(0x10, ninepin.REPLY_ACK))

	require.NoError(t, l.Send(ninepin.Transport(ninepin.CMD_PLAY)))
	assert.Equal(t, []byte{0x20, 0x01, 0x21}, port.written.Bytes())
	assert.False(t, l.Ready())

	got, err := l.PumpUntil(time.Second)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, ninepin.Ack, l.LastAck())
	assert.Equal(t, ninepin.ResponseAck, l.Response())
	assert.True(t, l.Ready())
}

func TestPumpNak(t *testing.T) {
	l, _ := newTestLink(reply(0x10, ninepin.REPLY_NAK, byte(ninepin.NAK_CHECKSUM_ERROR|ninepin.NAK_TIMEOUT)))

	require.NoError(t, l.Send(ninepin.Transport(ninepin.CMD_STOP)))
	got, err := l.PumpUntil(time.Second)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, ninepin.NakChecksumError, l.LastAck())
}

func TestPumpStatus(t *testing.T) {
	data := make([]byte, ninepin.StatusFrameSize)
	data[0] = 0x01 // local
	data[1] = 0x20 // stop
	l, _ := newTestLink(reply(0x70, ninepin.REPLY_STATUS, data...))

	require.NoError(t, l.Send(ninepin.StatusSense()))
	got, err := l.PumpUntil(time.Second)
	require.NoError(t, err)
	require.True(t, got)

	assert.Equal(t, ninepin.Ack, l.LastAck())
	assert.True(t, l.Status().Local)
	assert.False(t, l.IsRemoteEnabled())
	assert.True(t, l.IsMediaExist())
	assert.True(t, l.IsDiskAvailable())
	assert.True(t, l.IsStopping())
}

func TestPumpTimecodeAndDeviceType(t *testing.T) {
	l, _ := newTestLink(
		reply(0x70, ninepin.REPLY_LTC_TIME, 0x04, 0x03, 0x02, 0x01, 0x11, 0x22, 0x33, 0x44),
		reply(0x10, ninepin.REPLY_DEVICE_TYPE, 0x20, 0xa1),
	)

	require.NoError(t, l.Send(ninepin.CurrentTimeSense(ninepin.TIME_SENSE_LTC_TC_UB)))
	got, err := l.PumpUntil(time.Second)
	require.NoError(t, err)
	require.True(t, got)
	assert.Equal(t, ninepin.ResponseTimecodeUserBits, l.Response())
	assert.Equal(t, "01:02:03;04", l.TimeCode().String())
	assert.Equal(t, "44:33:22:11", l.UserBits().String())
	assert.Equal(t, l.TimeCode(), l.TimecodeUserBits().TimeCode)

	require.NoError(t, l.Send(ninepin.DeviceTypeRequest()))
	got, err = l.PumpUntil(time.Second)
	require.NoError(t, err)
	require.True(t, got)
	assert.Equal(t, uint16(0x20a1), l.DeviceType())
}

func TestPumpTimeout(t *testing.T) {
	l, _ := newTestLink()

	require.NoError(t, l.Send(ninepin.Transport(ninepin.CMD_PLAY)))
	start := time.Now()
	got, err := l.PumpUntil(30 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, ninepin.NoResponse, l.LastAck())
}

func TestReadyAfterWindow(t *testing.T) {
	l, _ := newTestLink()
	clock := time.Unix(1000, 0)
	l.now = func() time.Time { return clock }

	require.NoError(t, l.Send(ninepin.Transport(ninepin.CMD_PLAY)))
	assert.False(t, l.Ready())
	clock = clock.Add(DefaultTimeout)
	assert.True(t, l.Ready())
}

func TestPumpBadChecksumKeepsState(t *testing.T) {
	good := make([]byte, ninepin.StatusFrameSize)
	good[1] = 0x01 // play
	bad := reply(0x70, ninepin.REPLY_STATUS, make([]byte, ninepin.StatusFrameSize)...)
	bad[len(bad)-1]++

	l, _ := newTestLink(reply(0x70, ninepin.REPLY_STATUS, good...), bad)

	require.NoError(t, l.Send(ninepin.StatusSense()))
	_, err := l.PumpUntil(time.Second)
	require.NoError(t, err)

	require.NoError(t, l.Send(ninepin.StatusSense()))
	got, err := l.PumpUntil(time.Second)
	assert.False(t, got)
	var protoErr *ninepin.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.True(t, l.Status().Play)
}

func TestPumpShortStatus(t *testing.T) {
	l, _ := newTestLink(reply(0x70, ninepin.REPLY_STATUS, 0x00, 0x00))

	require.NoError(t, l.Send(ninepin.StatusSense()))
	_, err := l.PumpUntil(time.Second)
	var protoErr *ninepin.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestSendErrors(t *testing.T) {
	l, port := newTestLink()
	port.writeErr = errors.New("broken pipe")

	err := l.Send(ninepin.Transport(ninepin.CMD_PLAY))
	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "send", linkErr.Op)

	require.NoError(t, l.Close())
	assert.True(t, port.closed)
	err = l.Send(ninepin.Transport(ninepin.CMD_PLAY))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = l.PumpUntil(time.Millisecond)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPick(t *testing.T) {
	ports := []*enumerator.PortDetails{{Name: "/dev/ttyS0"}, {Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"}}

	name, err := pick(ports, 1)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", name)

	_, err = pick(ports, 2)
	assert.ErrorContains(t, err, "wrong port index 2")

	assert.Equal(t, "1: /dev/ttyUSB0 (USB VID=0403 PID=6001)", Describe(1, ports[1]))
	assert.Equal(t, "0: /dev/ttyS0", Describe(0, ports[0]))
}

func TestResolveName(t *testing.T) {
	name, err := Resolve("/dev/ttyUSB3")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", name)
}
