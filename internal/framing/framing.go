// Package framing implements the per-message framing state machine: given
// a growing byte buffer, decide whether a complete backend message is
// available, and if not, how many more bytes the caller needs to supply
// before asking again. The FSM never touches a socket; it is resumed
// explicitly by its caller (the stream FSM in internal/stream) with
// whatever bytes happen to be buffered so far, and each state transition
// is represented as a returned value rather than a blocked goroutine.
package framing

import (
	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/message"
)

// State is the framing FSM's discriminant.
type State int

const (
	// AwaitingHeader is the start state: no bytes of the next message have
	// been validated yet.
	AwaitingHeader State = iota
	// AwaitingBody has a validated header and is waiting for the body bytes
	// it declares.
	AwaitingBody
	// Done is terminal: the FSM encountered a codec error and will not
	// produce any further messages. A framing FSM is discarded, never
	// resynchronized, once it reaches this state.
	Done
)

// ActionKind discriminates the variant carried by an [Action].
type ActionKind int

const (
	// NeedsMore means no message is available yet; Hint is the minimum
	// number of additional buffered bytes required before calling Resume
	// again (it is never a precise requirement, only a lower bound, so the
	// caller may always supply more).
	NeedsMore ActionKind = iota
	// Message means a complete message was decoded; Consumed bytes should be
	// dropped from the front of the buffer before the next call to Resume.
	Message
	// Error means the FSM has become [Done]; Err explains why.
	Error
)

// Action is the result of one [FSM.Resume] call.
type Action struct {
	Kind     ActionKind
	Hint     int
	Tag      byte
	Body     []byte
	Consumed int
	Err      error
}

// FSM decodes one backend message at a time from a caller-supplied byte
// slice. It holds no buffer of its own: the caller (internal/stream) owns
// accumulation, compaction, and the read loop.
type FSM struct {
	state  State
	header message.Header
	err    error
}

// New constructs a framing FSM ready to decode the next message header.
func New() *FSM {
	return &FSM{state: AwaitingHeader}
}

// State reports the FSM's current discriminant, chiefly for tests and
// logging.
func (f *FSM) State() State {
	return f.state
}

// Resume attempts to decode the next message from buf, which holds
// everything read so far starting at the current message boundary. It never
// retains buf past the call; the message body in the returned [Action] is a
// sub-slice of buf, not a copy.
func (f *FSM) Resume(buf []byte) Action {
	if f.state == Done {
		return Action{Kind: Error, Err: f.err}
	}

	if f.state == AwaitingHeader {
		if len(buf) < message.HeaderSize {
			return Action{Kind: NeedsMore, Hint: message.HeaderSize - len(buf)}
		}

		h, err := message.ParseHeader(buf[:message.HeaderSize])
		if err != nil {
			f.state = Done
			f.err = err
			return Action{Kind: Error, Err: err}
		}

		f.header = h
		f.state = AwaitingBody
	}

	need := message.HeaderSize + int(f.header.Length)
	if len(buf) < need {
		return Action{Kind: NeedsMore, Hint: need - len(buf)}
	}

	body := buf[message.HeaderSize:need]
	tag := f.header.Tag
	f.state = AwaitingHeader

	return Action{Kind: Message, Tag: tag, Body: body, Consumed: need}
}

// Fail forces the FSM into its terminal [Done] state, e.g. when a caller
// detects extra trailing bytes after a message a lower layer already
// rejected. A framing FSM never resynchronizes after a codec error.
func (f *FSM) Fail(err error) {
	if err == nil {
		err = pgerr.New(pgerr.KindExtraBytes, "framing FSM forced to terminal state")
	}
	f.state = Done
	f.err = err
}
