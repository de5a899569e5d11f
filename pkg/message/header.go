package message

import (
	"encoding/binary"
	"math"

	"github.com/nativepg/pgclient/pgerr"
)

// HeaderSize is the size in bytes of a typed backend message header: one tag
// byte plus a four byte big-endian length (the length includes itself but
// not the tag byte).
const HeaderSize = 5

// MaxBodySize bounds a single message body so a corrupt or malicious length
// field cannot make a caller attempt to allocate an unbounded buffer. The
// wire format's length field is a signed int32 that includes its own four
// bytes, so the largest legal body is math.MaxInt32-4.
const MaxBodySize = math.MaxInt32 - 4

// Header is the decoded form of a backend message's leading {tag, length}
// pair, prior to the body having been read.
type Header struct {
	Tag    byte
	Length int32 // body length, excluding the tag byte and the length field itself
}

// ParseHeader decodes a typed message header from exactly HeaderSize bytes.
// It validates the length field against [MaxBodySize] and rejects negative
// lengths; it does not look at the body, which the framing FSM reads
// separately once it knows how many bytes to ask its caller for.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, pgerr.New(pgerr.KindIncompleteMessage, "short header")
	}

	tag := b[0]
	full := int32(binary.BigEndian.Uint32(b[1:5]))
	body := full - 4
	if body < 0 || body > MaxBodySize {
		return Header{}, pgerr.New(pgerr.KindProtocolValue, "invalid message length")
	}

	return Header{Tag: tag, Length: body}, nil
}

// ParseUntypedHeader decodes the four byte length field used by
// StartupMessage and CancelRequest, which carry no leading tag byte. The
// returned length includes the four header bytes themselves, matching the
// wire convention for these two message kinds.
func ParseUntypedHeader(b []byte) (int32, error) {
	if len(b) < 4 {
		return 0, pgerr.New(pgerr.KindIncompleteMessage, "short header")
	}

	full := int32(binary.BigEndian.Uint32(b[0:4]))
	if full < 4 || full-4 > MaxBodySize {
		return 0, pgerr.New(pgerr.KindProtocolValue, "invalid message length")
	}

	return full, nil
}
