package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/pkg/response"
	"github.com/nativepg/pgclient/pkg/types"
)

func TestCompositeHandsOffAfterEachSubHandlerIsDone(t *testing.T) {
	first := &recordingHandler{}
	second := &recordingHandler{}
	c := response.NewComposite(first, second)

	res, err := c.OnMessage(byte(types.BackendBindComplete), nil)
	require.NoError(t, err)
	assert.Equal(t, response.NeedsMore, res)

	res, err = c.OnMessage(byte(types.BackendCommandComplete), []byte("SELECT 1\x00"))
	require.NoError(t, err)
	assert.Equal(t, response.NeedsMore, res)
	assert.Equal(t, []byte{byte(types.BackendBindComplete), byte(types.BackendCommandComplete)}, first.tags)

	res, err = c.OnMessage(byte(types.BackendCommandComplete), []byte("SELECT 1\x00"))
	require.NoError(t, err)
	assert.Equal(t, response.Done, res)
	assert.Equal(t, []byte{byte(types.BackendCommandComplete)}, second.tags)
	require.NoError(t, c.Err())
}

func TestCompositeRejectsMessagesAfterExhaustion(t *testing.T) {
	c := response.NewComposite(&recordingHandler{})

	_, err := c.OnMessage(byte(types.BackendCommandComplete), nil)
	require.NoError(t, err)

	_, err = c.OnMessage(byte(types.BackendCommandComplete), nil)
	require.Error(t, err)
	require.Error(t, c.Err())
}
