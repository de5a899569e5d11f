// Package mock provides an in-memory [pgclient.Transport] for driving the
// connection driver and its FSMs in tests without a real socket: a script
// of backend bytes to hand back on read, and a recording of whatever the
// driver wrote.
package mock

import (
	"io"

	"github.com/nativepg/pgclient/pgerr"
)

// Transport is a scripted, in-memory implementation of pgclient.Transport.
// Reads are served from a queue of byte chunks pushed via QueueRead; writes
// are appended to Written for inspection.
type Transport struct {
	reads   [][]byte
	readErr error

	Written [][]byte
	closed  bool
}

// New constructs an empty mock transport.
func New() *Transport {
	return &Transport{}
}

// QueueRead appends a chunk to be returned by a future ReadSome call.
// Queuing multiple small chunks for one logical message exercises the
// stream FSM's partial-read handling.
func (t *Transport) QueueRead(b []byte) *Transport {
	t.reads = append(t.reads, b)
	return t
}

// QueueEOF arranges for the next ReadSome, once the queued chunks are
// exhausted, to return io.EOF.
func (t *Transport) QueueEOF() *Transport {
	t.readErr = io.EOF
	return t
}

// ReadSome implements pgclient.Transport: it returns as much of the next
// queued chunk as fits in p, requeueing any remainder for the next call.
func (t *Transport) ReadSome(p []byte) (int, error) {
	if len(t.reads) == 0 {
		if t.readErr != nil {
			return 0, t.readErr
		}
		return 0, pgerr.New(pgerr.KindProtocolValue, "mock transport: read queue exhausted")
	}
	chunk := t.reads[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		t.reads[0] = chunk[n:]
	} else {
		t.reads = t.reads[1:]
	}
	return n, nil
}

// WriteAll implements pgclient.Transport by recording the full write.
func (t *Transport) WriteAll(p []byte) error {
	cp := make([]byte, len(p))
	copy(cp, p)
	t.Written = append(t.Written, cp)
	return nil
}

// Close implements pgclient.Transport.
func (t *Transport) Close() error {
	t.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (t *Transport) Closed() bool {
	return t.closed
}

// AllWritten concatenates every WriteAll call observed so far, for
// byte-literal assertions against a single expected frame.
func (t *Transport) AllWritten() []byte {
	var out []byte
	for _, w := range t.Written {
		out = append(out, w...)
	}
	return out
}
