// Package pgclient implements the connection driver: a thin composition
// that owns a transport handle plus the startup/auth FSM (internal/auth),
// the stream FSM (internal/stream), the request builder (pkg/request) and
// the response dispatcher (pkg/response), exposing just two operations,
// Connect and Execute.
//
// The driver never spawns a goroutine or owns a timer: every blocking point
// is a transport call this package makes explicitly and synchronously, so
// the caller's runtime decides how (and whether) to block.
package pgclient

import (
	"errors"
	"log/slog"
	"time"

	"github.com/nativepg/pgclient/internal/auth"
	"github.com/nativepg/pgclient/internal/metrics"
	"github.com/nativepg/pgclient/internal/stream"
	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/request"
	"github.com/nativepg/pgclient/pkg/response"
)

// Transport is the bidirectional byte-stream collaborator this driver
// depends on but does not own. net.Conn's Read already has ReadSome's
// contract (it returns (int, error) and may return fewer bytes than
// requested) and its Close matches Close, but the method names differ, so
// a net.Conn needs a small adapter (cmd/pgclient's netTransport) that also
// loops net.Conn.Write until WriteAll has sent every byte.
type Transport interface {
	ReadSome(p []byte) (int, error)
	WriteAll(p []byte) error
	Close() error
}

// Params are the login credentials for Connect, re-exported from
// internal/auth so callers never need to import an internal package.
type Params = auth.Params

// Conn is a single, non-pooled connection to a Postgres backend. It is not
// safe for concurrent use: all FSMs and buffers here are owned exclusively
// by one driver.
type Conn struct {
	transport Transport
	stream    *stream.FSM
	logger    *slog.Logger

	processID       int32
	secretKey       int32
	parameterStatus map[string]string

	onNotification response.NotificationFunc
	metrics        *metrics.Collector
}

// Option configures a [Conn] at construction time.
type Option func(*Conn)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conn) { c.logger = logger }
}

// WithNotificationHandler registers a callback invoked for every
// NotificationResponse (LISTEN/NOTIFY) observed while driving a request.
func WithNotificationHandler(fn response.NotificationFunc) Option {
	return func(c *Conn) { c.onNotification = fn }
}

// WithMetrics attaches a Prometheus collector; pass [metrics.New] to get a
// self-contained registry, or a nil collector to leave metrics disabled.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Conn) { c.metrics = collector }
}

// Connect performs the startup/authentication handshake against transport
// and returns a ready-to-use connection.
func Connect(transport Transport, params Params, opts ...Option) (*Conn, error) {
	c := &Conn{
		transport:       transport,
		stream:          stream.New(),
		logger:          slog.Default(),
		parameterStatus: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}

	fsm := auth.New(params, c.logger)
	action := fsm.Resume()
	for {
		switch action.Kind {
		case auth.Write:
			if err := c.transport.WriteAll(action.Bytes); err != nil {
				return nil, pgerr.Wrap(pgerr.KindProtocolValue, err)
			}
			action = fsm.Resume()

		case auth.NeedMessage:
			tag, body, err := c.readMessage()
			if err != nil {
				c.metrics.ConnectAttempted("io_error")
				return nil, err
			}
			action = fsm.Feed(tag, body)

		case auth.Done:
			if action.Err != nil {
				c.metrics.ConnectAttempted("auth_failed")
				c.metrics.AuthCompleted("unknown", "failed")
				return nil, action.Err
			}
			c.processID = action.Result.ProcessID
			c.secretKey = action.Result.SecretKey
			c.parameterStatus = action.Result.ParameterStatus
			c.metrics.ConnectAttempted("ok")
			c.metrics.AuthCompleted(action.Result.AuthMethod, "ok")
			c.logger.Debug("connection established", slog.Int("process_id", int(c.processID)))
			return c, nil
		}
	}
}

// Execute writes request to the transport and drives the response
// dispatcher against handler until the request's expected ReadyForQuery
// count is exhausted.
func (c *Conn) Execute(req request.Request, handler response.Handler) error {
	start := time.Now()
	defer func() { c.metrics.QueryDuration(time.Since(start)) }()

	if err := c.transport.WriteAll(req.Payload); err != nil {
		return pgerr.Wrap(pgerr.KindProtocolValue, err)
	}

	d := response.New(req.Syncs, handler).TrackRequest(req.Tags)
	if c.onNotification != nil {
		d.OnNotification(c.onNotification)
	}

	for {
		tag, body, err := c.readMessage()
		if err != nil {
			return err
		}
		act := d.Feed(tag, body)
		if act.Kind == response.Terminal {
			if counter, ok := handler.(interface{ RowCount() int }); ok {
				c.metrics.RowsDecoded(counter.RowCount())
			}
			return act.Err
		}
	}
}

// BackendPID returns the process ID the server reported in BackendKeyData,
// for building an out-of-band CancelRequest on a separate transport.
func (c *Conn) BackendPID() int32 { return c.processID }

// CancelKey returns the secret key the server reported in BackendKeyData,
// for building an out-of-band CancelRequest on a separate transport.
func (c *Conn) CancelKey() int32 { return c.secretKey }

// ParameterStatus returns a ParameterStatus value recorded during startup.
func (c *Conn) ParameterStatus(key string) (string, bool) {
	v, ok := c.parameterStatus[key]
	return v, ok
}

// Close terminates the connection by sending a Terminate message and
// closing the transport. Errors from the Terminate write are ignored: the
// transport is closed regardless.
func (c *Conn) Close() error {
	if term, err := message.BuildTerminate(buffer.NewWriter()); err == nil {
		_ = c.transport.WriteAll(term)
	}
	return c.transport.Close()
}

// readMessage drives the stream FSM to decode exactly one backend message,
// performing whatever transport reads it asks for.
func (c *Conn) readMessage() (byte, []byte, error) {
	for {
		act := c.stream.Resume()
		switch act.Kind {
		case stream.Read:
			buf := make([]byte, act.Hint)
			n, err := c.transport.ReadSome(buf)
			if err != nil {
				wrapped := pgerr.Wrap(pgerr.KindProtocolValue, err)
				c.stream.Fail(wrapped)
				return 0, nil, wrapped
			}
			c.stream.Fill(buf[:n])

		case stream.Message:
			tag, body := act.Tag, act.Body
			c.stream.Advance(c.stream.Consumed(len(body)))
			return tag, body, nil

		case stream.Error:
			var perr *pgerr.Error
			if errors.As(act.Err, &perr) {
				c.metrics.ProtocolError(string(perr.Kind))
			}
			return 0, nil, act.Err
		}
	}
}
