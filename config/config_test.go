package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedDefaultMatchesDefault(t *testing.T) {
	conf, err := Decode(defaultConfigData, "toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.Equal(t, time.Second, conf.ResponseTimeout())
	assert.Zero(t, conf.PollInterval())
}

func TestDecodeTOML(t *testing.T) {
	data := `
port = "/dev/ttyUSB0"
poll_interval_ms = 250
log_level = "debug"

[[device]]
code = 0x1234
make = "ACME"
models = ["D-1", "D-2"]
`
	conf, err := Decode([]byte(data), "toml")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", conf.Port)
	assert.Equal(t, 38400, conf.Baud)
	assert.Equal(t, 250*time.Millisecond, conf.PollInterval())
	assert.Equal(t, "debug", conf.LogLevel)
	require.Len(t, conf.Device, 1)
	assert.Equal(t, uint16(0x1234), conf.Device[0].Code)

	table, err := conf.Devices()
	require.NoError(t, err)
	entry, ok := table.Lookup(0x1234)
	require.True(t, ok)
	assert.Equal(t, "D-1, D-2", entry.Model())
	_, ok = table.Lookup(0xb000)
	assert.True(t, ok)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	data := `
port: COM3
response_timeout_ms: 500
log_format: json
device:
  - code: 4660
    make: ACME
    models: [D-1]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "COM3", conf.Port)
	assert.Equal(t, 500*time.Millisecond, conf.ResponseTimeout())
	assert.Equal(t, "json", conf.LogFormat)
	require.Len(t, conf.Device, 1)
	assert.Equal(t, uint16(0x1234), conf.Device[0].Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{"zero timeout", "response_timeout_ms = 0", "response_timeout_ms"},
		{"negative attempts", "ready_attempts = -1", "ready_attempts"},
		{"negative interval", "poll_interval_ms = -5", "poll_interval_ms"},
		{"bad level", `log_level = "loud"`, "log level"},
		{"bad format", `log_format = "xml"`, "log_format"},
		{"device without make", "[[device]]\ncode = 1", "no make"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), "toml")
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestInitializeCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ".sony9pin")

	conf, err := initializeAt(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, defaultConfigData, written)

	// An existing file is read, not replaced
	require.NoError(t, os.WriteFile(path, []byte("baud = 9600\n"), 0644))
	conf, err = initializeAt(path)
	require.NoError(t, err)
	assert.Equal(t, 9600, conf.Baud)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
