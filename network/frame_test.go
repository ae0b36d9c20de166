package network

import (
	"bufio"
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("$F,14,00:12:45"),
		bytes.Repeat([]byte("x"), 126),
		bytes.Repeat([]byte("y"), 70000),
	}
	for _, p := range payloads {
		var buf bytes.Buffer
		require.NoError(t, writeFrame(&buf, opText, p))

		f, err := readFrame(bufio.NewReader(&buf))
		require.NoError(t, err)
		assert.True(t, f.fin)
		assert.Equal(t, byte(opText), f.opcode)
		assert.Equal(t, string(p), string(f.payload))
	}
}

func TestReadFrameUnmasked(t *testing.T) {
	// a server frame: FIN + text, no mask
	raw := append([]byte{0x81, 0x05}, []byte("hello")...)
	f, err := readFrame(bufio.NewReader(bytes.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(f.payload))
}

func TestReadFrameRejectsReservedBits(t *testing.T) {
	raw := []byte{0xC1, 0x00}
	_, err := readFrame(bufio.NewReader(bytes.NewReader(raw)))
	assert.Error(t, err)
}

func TestReadFrameRejectsOversizedPayload(t *testing.T) {
	var hdr bytes.Buffer
	hdr.Write([]byte{0x82, 127, 0, 0, 0, 1, 0, 0, 0, 0})
	_, err := readFrame(bufio.NewReader(&hdr))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestAcceptKey(t *testing.T) {
	// the worked example from RFC 6455 1.3
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", acceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestClosePayload(t *testing.T) {
	assert.Equal(t, []byte{0x03, 0xE8}, closePayload(1000))
}

func TestRequestURI(t *testing.T) {
	for in, want := range map[string]string{
		"wss://host.example":                     "/",
		"wss://host.example/Live/Stream":         "/Live/Stream",
		"wss://host.example/stream?raceid=12345": "/stream?raceid=12345",
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, requestURI(u), "input %q", in)
	}
}
