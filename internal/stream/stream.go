// Package stream implements the stream FSM: it wraps the framing FSM in
// internal/framing with buffer orchestration, so a caller driving it only
// ever needs to do two things — hand it bytes it just read, and fill a
// buffer slice it is told to read into. It owns the growable read buffer;
// the framing FSM itself stays stateless about storage.
package stream

import (
	"github.com/nativepg/pgclient/internal/framing"
)

// State is the stream FSM's discriminant.
type State int

const (
	Decoding State = iota
	YieldMessage
	AwaitRead
)

// ActionKind discriminates the variant carried by an [Action].
type ActionKind int

const (
	// Read asks the caller to read into a buffer of Hint bytes and report
	// whatever arrived via [FSM.Fill]. A short read is fine: Resume asks
	// again while the message is still incomplete.
	Read ActionKind = iota
	// Message yields one decoded message; call [FSM.Advance] before the
	// next [FSM.Resume].
	Message
	// Error is terminal.
	Error
)

// Action is the result of one [FSM.Resume] call.
type Action struct {
	Kind ActionKind
	Hint int
	Tag  byte
	Body []byte
	Err  error
}

// DefaultReadSize is the minimum slice capacity requested on a Read action:
// any framing hint smaller than this is raised to it, so every Read asks
// for at least DefaultReadSize bytes of capacity.
const DefaultReadSize = 4096

// FSM drives the framing FSM against a self-managed growable buffer.
type FSM struct {
	framing *framing.FSM
	buf     []byte // committed bytes not yet consumed by a decoded message
	err     error
}

// New constructs a stream FSM with an empty buffer.
func New() *FSM {
	return &FSM{framing: framing.New()}
}

// Fill appends freshly read bytes to the internal buffer. The caller must
// call this exactly once after satisfying a [Read] action, before calling
// [FSM.Resume] again.
func (f *FSM) Fill(b []byte) {
	f.buf = append(f.buf, b...)
}

// Advance drops the bytes belonging to the most recently yielded message
// from the front of the buffer. The caller must call this before the next
// [FSM.Resume] following a [Message] action.
func (f *FSM) Advance(n int) {
	f.buf = f.buf[n:]
}

// Resume attempts to decode the next message from the bytes accumulated so
// far, asking the caller to read more when needed.
func (f *FSM) Resume() Action {
	if f.err != nil {
		return Action{Kind: Error, Err: f.err}
	}

	act := f.framing.Resume(f.buf)
	switch act.Kind {
	case framing.NeedsMore:
		hint := act.Hint
		if hint < DefaultReadSize {
			hint = DefaultReadSize
		}
		return Action{Kind: Read, Hint: hint}
	case framing.Message:
		return Action{Kind: Message, Tag: act.Tag, Body: act.Body}
	default:
		f.err = act.Err
		return Action{Kind: Error, Err: act.Err}
	}
}

// Consumed reports how many buffered bytes the most recent [Message] action
// occupies, so a caller that wants to copy the body out before calling
// [FSM.Advance] knows the boundary. It mirrors framing.Action.Consumed for
// the message currently at the front of the buffer.
func (f *FSM) Consumed(bodyLen int) int {
	const headerSize = 5
	return headerSize + bodyLen
}

// Fail forces the stream (and its inner framing FSM) into a terminal error
// state, e.g. when the caller's read callback itself failed.
func (f *FSM) Fail(err error) {
	f.framing.Fail(err)
	f.err = err
}
