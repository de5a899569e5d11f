// Package buffer provides the zero-copy byte-buffer primitives that every
// framing/codec package in this module builds on: a frame [Writer] for
// serializing frontend messages and a [View] for lazily walking a decoded
// backend message body. Neither type owns an io.Reader or io.Writer: a
// suspendable state machine is never allowed to own a socket (see the
// connection driver's resume/Action contract), so both types operate
// purely on in-memory byte slices handed to them by the caller.
package buffer

import (
	"encoding/binary"
	"math"

	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/types"
)

// Writer accumulates a single frontend message frame in memory. Start begins
// a frame, the Add* methods append to it, and EndTyped (or EndUntyped)
// patches the length prefix back in and returns the finished bytes. A
// Writer is reused across messages via Reset.
type Writer struct {
	frame  []byte
	putbuf [8]byte
	err    error
}

// NewWriter constructs an empty frame writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Start resets the writer and begins a new message of the given type. The
// message type byte and four reserved length bytes are written immediately;
// EndTyped patches the real length back in once the frame is complete.
func (w *Writer) Start(t types.FrontendMessage) {
	w.Reset()
	w.putbuf[0] = byte(t)
	w.frame = append(w.frame, w.putbuf[:5]...)
}

// StartUntyped begins a message with no leading type byte, used only for
// StartupMessage and CancelRequest which are untyped on the wire.
func (w *Writer) StartUntyped() {
	w.Reset()
	w.frame = append(w.frame, w.putbuf[:4]...)
}

// AddByte appends a single byte to the frame.
func (w *Writer) AddByte(b byte) {
	if w.err != nil {
		return
	}
	w.frame = append(w.frame, b)
}

// AddInt16 appends a big-endian int16 to the frame.
func (w *Writer) AddInt16(i int16) {
	if w.err != nil {
		return
	}
	binary.BigEndian.PutUint16(w.putbuf[:2], uint16(i))
	w.frame = append(w.frame, w.putbuf[:2]...)
}

// AddInt32 appends a big-endian int32 to the frame.
func (w *Writer) AddInt32(i int32) {
	if w.err != nil {
		return
	}
	binary.BigEndian.PutUint32(w.putbuf[:4], uint32(i))
	w.frame = append(w.frame, w.putbuf[:4]...)
}

// AddBytes appends raw bytes to the frame.
func (w *Writer) AddBytes(b []byte) {
	if w.err != nil {
		return
	}
	w.frame = append(w.frame, b...)
}

// AddString appends a raw (non-terminated) string to the frame.
func (w *Writer) AddString(s string) {
	if w.err != nil {
		return
	}
	w.frame = append(w.frame, s...)
}

// AddCString appends a string followed by a null terminator.
func (w *Writer) AddCString(s string) {
	w.AddString(s)
	w.AddNullTerminate()
}

// AddNullTerminate appends a null terminator byte.
func (w *Writer) AddNullTerminate() {
	if w.err != nil {
		return
	}
	w.frame = append(w.frame, 0)
}

// Error returns the first error encountered while building the frame, if
// any. Add* methods are no-ops once an error has been recorded.
func (w *Writer) Error() error {
	return w.err
}

// Reset discards the in-progress frame so the writer can be reused.
func (w *Writer) Reset() {
	w.frame = w.frame[:0]
	w.err = nil
}

// EndTyped patches the message length into bytes [1:5] (after the leading
// type byte written by Start) and returns the finished, ready-to-transmit
// frame. The returned slice aliases the writer's internal buffer and is
// only valid until the next Start/Reset. Frames whose length field would
// overflow an int32 are rejected.
func (w *Writer) EndTyped() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.frame)-1 > math.MaxInt32 {
		w.err = pgerr.New(pgerr.KindValueTooBig, "message length exceeds int32 range")
		return nil, w.err
	}
	length := uint32(len(w.frame) - 1)
	binary.BigEndian.PutUint32(w.frame[1:5], length)
	return w.frame, nil
}

// EndUntyped is EndTyped for frames started with StartUntyped: it patches the
// length into bytes [0:4] (the whole frame, no type byte).
func (w *Writer) EndUntyped() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.frame) > math.MaxInt32 {
		w.err = pgerr.New(pgerr.KindValueTooBig, "message length exceeds int32 range")
		return nil, w.err
	}
	length := uint32(len(w.frame))
	binary.BigEndian.PutUint32(w.frame[0:4], length)
	return w.frame, nil
}
