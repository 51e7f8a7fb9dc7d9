package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/camlink-project/camlink-go/pkg/log"
	"github.com/camlink-project/camlink-go/pkg/wire"
)

// ErrConnClosed indicates the connection has been closed.
var ErrConnClosed = errors.New("connection closed")

// Handler receives decoded session-layer messages from a connection.
//
// A camera session implements this interface; the connection owns the link
// plumbing (framing, keepalive) and hands everything above it to the handler.
type Handler interface {
	// HandleHeartbeat is called for each received heartbeat.
	HandleHeartbeat(hb *wire.Heartbeat)

	// HandleSetResponse is called for each received set-response.
	HandleSetResponse(resp *wire.SetResponse)

	// HandleGetResponse is called for each received get-response.
	HandleGetResponse(resp *wire.GetResponse)
}

// ConnConfig configures a connection.
type ConnConfig struct {
	// MaxMessageSize is the maximum frame payload size.
	// 0 selects DefaultMaxMessageSize.
	MaxMessageSize uint32

	// KeepAlive configures the link keep-alive. Zero values select the
	// defaults.
	KeepAlive KeepAliveConfig

	// DisableKeepAlive turns off ping/pong monitoring. Intended for tests
	// and for underlying transports that carry their own liveness.
	DisableKeepAlive bool

	// Logger receives transport events. Nil disables logging.
	Logger log.Logger
}

// Conn is a framed CamLink connection over a stream.
//
// Conn implements the camera session's Sender: Send encodes nothing itself,
// it writes an already-encoded message as one frame.
type Conn struct {
	id      string
	rw      io.ReadWriteCloser
	framer  *Framer
	handler Handler
	logger  log.Logger

	keepAlive *KeepAlive

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error

	onClose func(err error)
}

// NewConn wraps a stream in a CamLink connection.
//
// The handler receives decoded messages once Run is started. The connection
// takes ownership of rw and closes it when the connection closes.
func NewConn(rw io.ReadWriteCloser, handler Handler, config ConnConfig) *Conn {
	id := uuid.New().String()

	framer := NewFramer(rw, config.MaxMessageSize)
	if config.Logger != nil {
		framer.SetLogger(config.Logger, id)
	}

	c := &Conn{
		id:      id,
		rw:      rw,
		framer:  framer,
		handler: handler,
		logger:  config.Logger,
		closed:  make(chan struct{}),
	}

	if !config.DisableKeepAlive {
		c.keepAlive = NewKeepAlive(config.KeepAlive, c.sendPing, c.keepAliveTimeout)
	}

	return c
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the remote address, if the underlying stream is a
// net.Conn. Returns an empty string otherwise.
func (c *Conn) RemoteAddr() string {
	if nc, ok := c.rw.(net.Conn); ok {
		return nc.RemoteAddr().String()
	}
	return ""
}

// SetCloseCallback sets a callback invoked once when the connection closes.
// The error is nil on clean shutdown.
func (c *Conn) SetCloseCallback(cb func(err error)) {
	c.onClose = cb
}

// Send writes an encoded message as a single frame.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	return c.framer.WriteFrame(data)
}

// Run reads frames until the connection closes or ctx is canceled.
//
// Decoded messages are dispatched to the handler synchronously, in arrival
// order. Run returns the error that terminated the read loop; io.EOF and
// context cancellation return nil.
func (c *Conn) Run(ctx context.Context) error {
	if c.keepAlive != nil {
		c.keepAlive.Start(ctx)
		defer c.keepAlive.Stop()
	}

	stop := context.AfterFunc(ctx, func() {
		c.close(ctx.Err())
	})
	defer stop()

	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			select {
			case <-c.closed:
				return nil
			default:
			}
			if err == io.EOF {
				c.close(nil)
				return nil
			}
			c.close(err)
			return err
		}

		c.dispatch(data)
	}
}

// Close closes the connection and the underlying stream.
func (c *Conn) Close() error {
	c.close(nil)
	return nil
}

// close performs the actual close, exactly once.
func (c *Conn) close(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.closed)
		_ = c.rw.Close()

		if c.logger != nil {
			reason := "closed"
			if err != nil {
				reason = err.Error()
			}
			c.logger.Log(log.Event{
				Timestamp: time.Now(),
				LinkID:    c.id,
				Layer:     log.LayerTransport,
				Category:  log.CategoryState,
				StateChange: &log.StateChangeEvent{
					Entity:   log.StateEntityLink,
					OldState: "open",
					NewState: "closed",
					Reason:   reason,
				},
			})
		}

		if c.onClose != nil {
			c.onClose(err)
		}
	})
}

// dispatch decodes a frame and routes it.
func (c *Conn) dispatch(data []byte) {
	env, err := wire.Decode(data)
	if err != nil {
		// Corrupt frames are dropped; the link stays up.
		c.logError("decode", err)
		return
	}

	switch env.Type {
	case wire.TypeHeartbeat:
		c.handler.HandleHeartbeat(env.Heartbeat)
	case wire.TypeSetResponse:
		c.handler.HandleSetResponse(env.SetResponse)
	case wire.TypeGetResponse:
		c.handler.HandleGetResponse(env.GetResponse)
	case wire.TypePing:
		c.replyPong(env.Control.Sequence)
	case wire.TypePong:
		if c.keepAlive != nil {
			c.keepAlive.PongReceived(env.Control.Sequence)
		}
	case wire.TypeSetRequest, wire.TypeGetRequest:
		// Requests flow controller to accessory; a request arriving here
		// means a misbehaving peer. Drop it.
	default:
		// Unknown message types are tolerated for forward compatibility.
	}
}

// sendPing sends a keep-alive ping frame.
func (c *Conn) sendPing(seq uint32) error {
	data, err := wire.EncodePing(seq)
	if err != nil {
		return fmt.Errorf("failed to encode ping: %w", err)
	}
	return c.Send(data)
}

// replyPong answers a received ping.
func (c *Conn) replyPong(seq uint32) {
	data, err := wire.EncodePong(seq)
	if err != nil {
		c.logError("encode pong", err)
		return
	}
	if err := c.Send(data); err != nil {
		c.logError("send pong", err)
	}
}

// keepAliveTimeout closes the connection after too many missed pongs.
func (c *Conn) keepAliveTimeout() {
	c.close(errors.New("keep-alive timeout"))
}

func (c *Conn) logError(context string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		LinkID:    c.id,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}
