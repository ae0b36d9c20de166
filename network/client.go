package network

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

// Processor consumes the payload of one text frame and reports whether
// any record in it was accepted.
type Processor interface {
	ProcessFrame(data string) bool
}

var (
	// ErrAlreadyRunning is returned by Connect while a receive loop is
	// active.
	ErrAlreadyRunning = errors.New("client is already connected")

	// ErrMissingCredentials is returned by Connect when the endpoint URL
	// or the handshake key is empty.
	ErrMissingCredentials = errors.New("websocket url and key are required")
)

// Client maintains the WebSocket connection to the Race Monitor timing
// stream. The channel is receive-only: after the upgrade the client only
// ever writes control frames.
//
// Connect starts a single background goroutine running the receive loop;
// every text frame is handed to the Processor in arrival order, and the
// Processor publishes a fresh snapshot whenever a frame carried at least
// one accepted record. The client never reconnects on its own: a failed
// stream is logged, the socket is closed, IsRunning flips to false and
// the caller decides whether to Connect again.
type Client struct {
	Logger    zerolog.Logger
	Processor Processor

	// OnConnected and OnDisconnected are optional lifecycle callbacks.
	// OnDisconnected fires however the loop ends, including Disconnect.
	OnConnected    func()
	OnDisconnected func()

	mu      sync.Mutex
	conn    net.Conn
	running bool
	stop    bool
	done    chan struct{}

	wmu sync.Mutex
}

// Connect performs the upgrade handshake with the supplied key and
// starts the receive loop. A second call while the loop is running
// returns ErrAlreadyRunning.
func (c *Client) Connect(wsURL, wsKey string) error {
	if wsURL == "" || wsKey == "" {
		return ErrMissingCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrAlreadyRunning
	}

	c.Logger.Info().Msgf("connecting to %s", wsURL)
	conn, br, err := handshake(wsURL, wsKey)
	if err != nil {
		code := ErrorConnectFailed
		if errors.Is(err, errHandshake) {
			code = ErrorHandshakeFailed
		}
		c.Logger.Error().Int(Code, code).Msgf("connect failed: %v", err)
		return err
	}

	c.conn = conn
	c.running = true
	c.stop = false
	c.done = make(chan struct{})
	go c.listen(br, c.done)

	c.Logger.Info().Int(Code, InfoConnected).Msg("connected, receive loop started")
	if c.OnConnected != nil {
		c.OnConnected()
	}
	return nil
}

// Disconnect stops the receive loop, closes the socket and waits for the
// loop goroutine to exit. Calling it while not running is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.stop = true
	conn := c.conn
	done := c.done
	c.mu.Unlock()

	// Best-effort close frame; the hard close below unblocks the loop
	// either way.
	_ = c.writeControl(opClose, closePayload(1000))
	_ = conn.Close()
	<-done

	c.Logger.Info().Msg("websocket connection closed")
}

// IsRunning reports whether the receive loop is active.
func (c *Client) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// listen is the receive loop. It runs on its own goroutine until the
// stream fails, the server closes, or Disconnect closes the socket.
func (c *Client) listen(br *bufio.Reader, done chan struct{}) {
	defer close(done)

	for {
		payload, err := c.readMessage(br)
		if err != nil {
			switch {
			case c.stopRequested():
				c.Logger.Debug().Msg("receive loop stopped on request")
			case errors.Is(err, errServerClosed):
				c.Logger.Warn().Int(Code, InfoServerClose).Msg("websocket closed by server")
			default:
				c.Logger.Error().Int(Code, ErrorReadFrame).Msgf("receive failed: %v", err)
			}
			c.teardown()
			return
		}
		if payload == nil {
			continue
		}

		c.Logger.Debug().Msgf("received frame:\n%s", payload)
		if !c.Processor.ProcessFrame(string(payload)) {
			c.Logger.Debug().Msg("frame carried no accepted records")
		}
	}
}

// readMessage returns the payload of the next text message, reassembling
// fragmented frames. Ping and pong frames are handled here and reading
// continues; a close frame is echoed and returns errServerClosed. Binary
// messages are dropped and return a nil payload with a nil error.
func (c *Client) readMessage(br *bufio.Reader) ([]byte, error) {
	var text []byte
	assembling := false
	discarding := false

	for {
		f, err := readFrame(br)
		if err != nil {
			return nil, err
		}

		switch f.opcode {
		case opPing:
			if err := c.writeControl(opPong, f.payload); err != nil {
				return nil, err
			}
		case opPong:
			// keep-alive reply, nothing to do
		case opClose:
			_ = c.writeControl(opClose, f.payload)
			return nil, errServerClosed
		case opText:
			if f.fin {
				return f.payload, nil
			}
			text = append(text, f.payload...)
			assembling = true
		case opBinary:
			// binary messages are not part of the record protocol
			if f.fin {
				return nil, nil
			}
			discarding = true
		case opContinuation:
			if discarding {
				if f.fin {
					return nil, nil
				}
				continue
			}
			if !assembling {
				return nil, errors.New("continuation frame without a preceding text frame")
			}
			text = append(text, f.payload...)
			if f.fin {
				return text, nil
			}
		default:
			return nil, errors.New("unrecognised frame opcode")
		}
	}
}

// writeControl sends one control frame; it serializes writers because
// pongs come from the loop goroutine and the close frame from the
// caller's.
func (c *Client) writeControl(opcode byte, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return net.ErrClosed
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return writeFrame(conn, opcode, payload)
}

func (c *Client) stopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop
}

// teardown transitions to not-running after the loop exits.
func (c *Client) teardown() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.running = false
	c.mu.Unlock()

	if c.OnDisconnected != nil {
		c.OnDisconnected()
	}
}
