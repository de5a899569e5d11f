package buffer

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/nativepg/pgclient/pgerr"
)

// View is a lazy, forward-only cursor over an already-framed message body:
// the bytes between the header and the end of the message, as delivered by
// the framing FSM. Every Get* method consumes bytes from the front of the
// remaining slice; none of them copy, and a [View] never performs I/O
// itself.
type View struct {
	body []byte
}

// NewView wraps a decoded message body for field-by-field consumption.
func NewView(body []byte) *View {
	return &View{body: body}
}

// Remaining reports how many unconsumed bytes are left in the view.
func (v *View) Remaining() int {
	return len(v.body)
}

// Bytes returns the unconsumed remainder without advancing the cursor.
func (v *View) Bytes() []byte {
	return v.body
}

// GetString reads a null-terminated string, returning a zero-copy alias of
// the underlying body. Safe only because message bodies are never mutated or
// reused once handed to a [View].
func (v *View) GetString() (string, error) {
	pos := bytes.IndexByte(v.body, 0)
	if pos == -1 {
		return "", pgerr.New(pgerr.KindIncompleteMessage, "missing null terminator")
	}

	s := v.body[:pos]
	v.body = v.body[pos+1:]
	return *(*string)(unsafe.Pointer(&s)), nil
}

// GetBytes consumes and returns the next n bytes. n == -1 denotes a SQL NULL
// and yields a nil slice with no bytes consumed, matching the wire
// convention for parameter/column values.
func (v *View) GetBytes(n int32) ([]byte, error) {
	if n == -1 {
		return nil, nil
	}
	if n < 0 || int(n) > len(v.body) {
		return nil, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}

	b := v.body[:n]
	v.body = v.body[n:]
	return b, nil
}

// GetByte consumes and returns the next single byte.
func (v *View) GetByte() (byte, error) {
	if len(v.body) < 1 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}
	b := v.body[0]
	v.body = v.body[1:]
	return b, nil
}

// GetInt16 consumes and returns the next big-endian int16.
func (v *View) GetInt16() (int16, error) {
	if len(v.body) < 2 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}
	val := int16(binary.BigEndian.Uint16(v.body[:2]))
	v.body = v.body[2:]
	return val, nil
}

// GetUint16 consumes and returns the next big-endian uint16.
func (v *View) GetUint16() (uint16, error) {
	if len(v.body) < 2 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}
	val := binary.BigEndian.Uint16(v.body[:2])
	v.body = v.body[2:]
	return val, nil
}

// GetInt32 consumes and returns the next big-endian int32.
func (v *View) GetInt32() (int32, error) {
	if len(v.body) < 4 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}
	val := int32(binary.BigEndian.Uint32(v.body[:4]))
	v.body = v.body[4:]
	return val, nil
}

// GetUint32 consumes and returns the next big-endian uint32.
func (v *View) GetUint32() (uint32, error) {
	if len(v.body) < 4 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}
	val := binary.BigEndian.Uint32(v.body[:4])
	v.body = v.body[4:]
	return val, nil
}

// GetInt64 consumes and returns the next big-endian int64.
func (v *View) GetInt64() (int64, error) {
	if len(v.body) < 8 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "not enough bytes remaining in message")
	}
	val := int64(binary.BigEndian.Uint64(v.body[:8]))
	v.body = v.body[8:]
	return val, nil
}
