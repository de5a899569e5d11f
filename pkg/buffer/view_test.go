package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/pkg/buffer"
)

func TestViewGetString(t *testing.T) {
	v := buffer.NewView([]byte("hello\x00world"))
	s, err := v.GetString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, "world", string(v.Bytes()))
}

func TestViewGetStringMissingTerminator(t *testing.T) {
	v := buffer.NewView([]byte("hello"))
	_, err := v.GetString()
	require.Error(t, err)
}

func TestViewGetInt32(t *testing.T) {
	v := buffer.NewView([]byte{0, 0, 0, 42, 0xFF})
	n, err := v.GetInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(42), n)
	assert.Equal(t, 1, v.Remaining())
}

func TestViewGetBytesNull(t *testing.T) {
	v := buffer.NewView([]byte{1, 2, 3})
	b, err := v.GetBytes(-1)
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Equal(t, 3, v.Remaining())
}

func TestViewInsufficientData(t *testing.T) {
	v := buffer.NewView([]byte{0, 1})
	_, err := v.GetInt32()
	require.Error(t, err)
}
