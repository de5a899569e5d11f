package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/message"
)

func TestBuildSimpleQuery(t *testing.T) {
	w := buffer.NewWriter()
	got, err := message.BuildSimpleQuery(w, "select 1;")
	require.NoError(t, err)

	want := []byte{0x51, 0x00, 0x00, 0x00, 0x0E, 0x73, 0x65, 0x6C, 0x65, 0x63, 0x74, 0x20, 0x31, 0x3B, 0x00}
	assert.Equal(t, want, got)
}

func TestBuildStartupMessage(t *testing.T) {
	w := buffer.NewWriter()

	got, err := message.BuildStartupMessage(w, map[string]string{"user": "postgres", "database": "postgres"})
	require.NoError(t, err)

	// "user" is always serialized first, remaining keys sorted, so the
	// output is byte-exact regardless of map iteration order.
	want := []byte{
		0x00, 0x00, 0x00, 0x29,
		0x00, 0x03, 0x00, 0x00,
		0x75, 0x73, 0x65, 0x72, 0x00,
		0x70, 0x6F, 0x73, 0x74, 0x67, 0x72, 0x65, 0x73, 0x00,
		0x64, 0x61, 0x74, 0x61, 0x62, 0x61, 0x73, 0x65, 0x00,
		0x70, 0x6F, 0x73, 0x74, 0x67, 0x72, 0x65, 0x73, 0x00,
		0x00,
	}
	assert.Equal(t, want, got)
}

func TestBuildBindAllOrNothingFormat(t *testing.T) {
	w := buffer.NewWriter()
	params := []message.BindParameter{
		{Format: 1, Value: []byte{0, 0, 0, 7}},
		{Format: 1, Value: []byte{0, 0, 0, 8}},
	}
	got, err := message.BuildBind(w, "", "", params, nil)
	require.NoError(t, err)
	assert.Equal(t, byte('B'), got[0])
}
