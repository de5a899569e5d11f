package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/internal/stream"
)

var twoMessages = []byte{
	// ParseComplete '1', length 4
	'1', 0, 0, 0, 4,
	// ReadyForQuery 'Z', length 5, status 'I'
	'Z', 0, 0, 0, 5, 'I',
}

func feedInChunks(t *testing.T, f *stream.FSM, data []byte, chunkSize int) []stream.Action {
	t.Helper()
	var yielded []stream.Action
	pos := 0

	for {
		act := f.Resume()
		switch act.Kind {
		case stream.Read:
			end := pos + chunkSize
			if end > len(data) {
				end = len(data)
			}
			if pos == end {
				return yielded
			}
			f.Fill(data[pos:end])
			pos = end
		case stream.Message:
			yielded = append(yielded, act)
			f.Advance(f.Consumed(len(act.Body)))
		case stream.Error:
			t.Fatalf("unexpected error: %v", act.Err)
		}

		if len(yielded) == 2 {
			return yielded
		}
	}
}

func TestStreamAnyChunking(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 11, len(twoMessages)} {
		f := stream.New()
		msgs := feedInChunks(t, f, twoMessages, size)
		require.Len(t, msgs, 2, "chunk size %d", size)
		assert.Equal(t, byte('1'), msgs[0].Tag)
		assert.Equal(t, byte('Z'), msgs[1].Tag)
		assert.Equal(t, "I", string(msgs[1].Body))
	}
}
