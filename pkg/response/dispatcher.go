// Package response implements the response dispatcher: it consumes one
// backend message at a time (handed to it by whatever owns the stream FSM,
// the connection driver in package pgclient) and routes it to a
// user-supplied [Handler], absorbing the messages that may arrive
// unsolicited at any point (NoticeResponse, ParameterStatus,
// NotificationResponse) and counting down ReadyForQuery messages against
// the number of Sync boundaries the request builder recorded.
//
// When the dispatcher is told which frontend messages the request emitted
// (via [Dispatcher.TrackRequest]), it also papers over the server's
// skip-to-Sync error behavior: after an ErrorResponse inside an
// extended-query segment, the server ignores the remaining Bind / Describe
// / Execute / Close messages of that segment, so the dispatcher synthesizes
// one placeholder message per skipped step. Handlers then observe the same
// positional message count whether the segment succeeded or failed halfway,
// which is what lets [Composite] assign one sub-handler per step.
package response

import (
	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/types"
)

// HandlerResult is returned by [Handler.OnMessage] to tell the dispatcher
// whether the handler considers itself finished with this response segment.
type HandlerResult int

const (
	// NeedsMore means the handler expects further messages.
	NeedsMore HandlerResult = iota
	// Done means the handler has reached a terminal message for its
	// segment (e.g. CommandComplete). It does not by itself end the
	// dispatcher's loop: the dispatcher keeps draining messages up to the
	// matching ReadyForQuery regardless.
	Done
)

// Handler is the polymorphic response-handler capability: a callback over
// backend messages, plus whatever result it accumulated. The dispatcher
// owns only a borrow of it.
type Handler interface {
	// OnMessage is called for every backend message that is not one of the
	// dispatcher's own side-channel messages (NoticeResponse,
	// ParameterStatus, NotificationResponse, ReadyForQuery).
	OnMessage(tag byte, body []byte) (HandlerResult, error)
}

// ActionKind discriminates the variant carried by an [Action].
type ActionKind int

const (
	// NeedMessage asks the caller to deliver the next backend message via
	// [Dispatcher.Feed].
	NeedMessage ActionKind = iota
	// Terminal means the dispatcher has observed as many ReadyForQuery
	// messages as the request declared Syncs; Err (if non-nil) is the
	// first error observed during the whole exchange.
	Terminal
)

// Action is the result of one [Dispatcher.Feed] call.
type Action struct {
	Kind ActionKind
	Err  error
}

// NotificationFunc receives an asynchronous NotificationResponse
// (LISTEN/NOTIFY) observed mid-stream. It is called synchronously from
// whatever goroutine drives [Dispatcher.Feed]; there is no internal
// goroutine of its own.
type NotificationFunc func(backendPID int32, channel, payload string)

// Dispatcher drives a [Handler] against a request's expected ReadyForQuery
// count.
type Dispatcher struct {
	remainingSyncs int
	handler        Handler
	onNotify       NotificationFunc
	firstErr       error

	// tags is the request's emitted frontend message sequence; cursor
	// points at the first entry not yet answered by the server. Both stay
	// zero-valued unless TrackRequest was called.
	tags   []types.FrontendMessage
	cursor int
}

// New constructs a dispatcher for a request that expects syncs
// ReadyForQuery messages, routing all other messages to handler.
func New(syncs int, handler Handler) *Dispatcher {
	return &Dispatcher{remainingSyncs: syncs, handler: handler}
}

// TrackRequest hands the dispatcher the request's emitted frontend message
// tags, enabling skipped-step placeholder synthesis after a mid-segment
// ErrorResponse. Without it the dispatcher still drains correctly but
// handlers see the server's raw (shortened) message sequence on error.
func (d *Dispatcher) TrackRequest(tags []types.FrontendMessage) *Dispatcher {
	d.tags = tags
	return d
}

// OnNotification registers a side-channel callback for NotificationResponse
// messages observed mid-stream. If unset, notifications are silently
// dropped.
func (d *Dispatcher) OnNotification(fn NotificationFunc) *Dispatcher {
	d.onNotify = fn
	return d
}

// Err reports the first error observed across the whole exchange, or nil.
func (d *Dispatcher) Err() error {
	return d.firstErr
}

// Feed delivers one backend message to the dispatcher.
func (d *Dispatcher) Feed(tag byte, body []byte) Action {
	switch types.BackendMessage(tag) {
	case types.BackendParameterStatus:
		// ParameterStatus may arrive at any time (e.g. after a SET
		// command); the connection driver already recorded the
		// authoritative copy during startup, so mid-stream occurrences are
		// observed but not separately surfaced here.
		if _, err := message.ParseParameterStatus(body); err != nil {
			d.recordErr(err)
		}
		return Action{Kind: NeedMessage}

	case types.BackendNoticeResponse:
		if _, err := message.ParseDiagnostics(body); err != nil {
			d.recordErr(err)
		}
		return Action{Kind: NeedMessage}

	case types.BackendNotificationResponse:
		n, err := message.ParseNotificationResponse(body)
		if err != nil {
			d.recordErr(err)
			return Action{Kind: NeedMessage}
		}
		if d.onNotify != nil {
			d.onNotify(n.BackendPID, n.Channel, n.Payload)
		}
		return Action{Kind: NeedMessage}

	case types.BackendReady:
		if _, err := message.ParseReadyForQuery(body); err != nil {
			d.recordErr(err)
		}
		d.advancePastSync()
		d.remainingSyncs--
		if d.remainingSyncs <= 0 {
			return Action{Kind: Terminal, Err: d.firstErr}
		}
		return Action{Kind: NeedMessage}

	case types.BackendErrorResponse:
		diag, err := message.ParseDiagnostics(body)
		if err != nil {
			d.recordErr(err)
		} else {
			d.recordErr(pgerr.WithDiagnostics(pgerr.KindExecServerError, diag))
		}
		if _, err := d.handler.OnMessage(tag, body); err != nil {
			d.recordErr(err)
		}
		d.synthesizeSkipped()
		return Action{Kind: NeedMessage}

	default:
		d.advanceCursor(types.BackendMessage(tag))
		_, err := d.handler.OnMessage(tag, body)
		if err != nil {
			d.recordErr(err)
		}
		return Action{Kind: NeedMessage}
	}
}

// advanceCursor moves the request cursor past its head entry when tag is
// that entry's completion message. DataRow and other mid-step messages
// leave the cursor alone; Flush provokes no response at all and is stepped
// over eagerly.
func (d *Dispatcher) advanceCursor(tag types.BackendMessage) {
	d.skipFlushes()
	if d.cursor >= len(d.tags) {
		return
	}
	switch d.tags[d.cursor] {
	case types.FrontendParse:
		if tag == types.BackendParseComplete {
			d.cursor++
		}
	case types.FrontendBind:
		if tag == types.BackendBindComplete {
			d.cursor++
		}
	case types.FrontendDescribe:
		if tag == types.BackendRowDescription || tag == types.BackendNoData || tag == types.BackendParameterDescription {
			d.cursor++
		}
	case types.FrontendExecute:
		if tag == types.BackendCommandComplete || tag == types.BackendEmptyQuery || tag == types.BackendPortalSuspended {
			d.cursor++
		}
	case types.FrontendClose:
		if tag == types.BackendCloseComplete {
			d.cursor++
		}
	}
}

// advancePastSync moves the cursor past the frontend message a
// ReadyForQuery answers: the Sync ending an extended-query segment, or a
// simple Query (whose whole response ends at ReadyForQuery).
func (d *Dispatcher) advancePastSync() {
	d.skipFlushes()
	if d.cursor >= len(d.tags) {
		return
	}
	if t := d.tags[d.cursor]; t == types.FrontendSync || t == types.FrontendSimpleQuery {
		d.cursor++
	}
}

func (d *Dispatcher) skipFlushes() {
	for d.cursor < len(d.tags) && d.tags[d.cursor] == types.FrontendFlush {
		d.cursor++
	}
}

// synthesizeSkipped runs after an ErrorResponse has been forwarded: the
// errored step itself is consumed, then every remaining step of the current
// segment (the server will not answer them) is delivered to the handler as
// its skipped-placeholder message. The segment's Sync stays pending; its
// ReadyForQuery still arrives on the wire.
func (d *Dispatcher) synthesizeSkipped() {
	if len(d.tags) == 0 {
		return
	}
	d.skipFlushes()
	if d.cursor < len(d.tags) {
		switch d.tags[d.cursor] {
		case types.FrontendSync, types.FrontendSimpleQuery:
			// The error belongs to the segment as a whole (e.g. a failed
			// simple query); nothing was left unanswered.
			return
		default:
			d.cursor++
		}
	}
	for d.cursor < len(d.tags) {
		ft := d.tags[d.cursor]
		if ft == types.FrontendSync || ft == types.FrontendSimpleQuery {
			return
		}
		if placeholder, ok := skippedPlaceholder(ft); ok {
			if _, err := d.handler.OnMessage(byte(placeholder), nil); err != nil {
				d.recordErr(err)
			}
		}
		d.cursor++
	}
}

// skippedPlaceholder maps a frontend message the server skipped to the
// placeholder delivered in place of its response. Flush has no response to
// stand in for.
func skippedPlaceholder(ft types.FrontendMessage) (types.BackendMessage, bool) {
	switch ft {
	case types.FrontendParse:
		return types.SkippedParse, true
	case types.FrontendBind:
		return types.SkippedBind, true
	case types.FrontendDescribe:
		return types.SkippedDescribe, true
	case types.FrontendExecute:
		return types.SkippedExecute, true
	case types.FrontendClose:
		return types.SkippedClose, true
	default:
		return 0, false
	}
}

func (d *Dispatcher) recordErr(err error) {
	if d.firstErr == nil {
		d.firstErr = err
	}
}
