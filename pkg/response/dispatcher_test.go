package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/pkg/response"
	"github.com/nativepg/pgclient/pkg/types"
)

// recordingHandler records every message it is given and always reports
// NeedsMore except on CommandComplete.
type recordingHandler struct {
	tags []byte
}

func (h *recordingHandler) OnMessage(tag byte, body []byte) (response.HandlerResult, error) {
	h.tags = append(h.tags, tag)
	if tag == byte(types.BackendCommandComplete) {
		return response.Done, nil
	}
	return response.NeedsMore, nil
}

func TestDispatcherInterleavesNoticeAndParameterStatus(t *testing.T) {
	h := &recordingHandler{}
	d := response.New(1, h)

	feed := func(tag byte, body []byte) response.Action { return d.Feed(tag, body) }

	// NoticeResponse then ParameterStatus then CommandComplete then ReadyForQuery.
	var noticeBody []byte
	noticeBody = append(noticeBody, 'M')
	noticeBody = append(noticeBody, []byte("notice\x00")...)
	noticeBody = append(noticeBody, 0)
	act := feed(byte(types.BackendNoticeResponse), noticeBody)
	require.Equal(t, response.NeedMessage, act.Kind)

	var psBody []byte
	psBody = append(psBody, []byte("client_encoding\x00")...)
	psBody = append(psBody, []byte("UTF8\x00")...)
	act = feed(byte(types.BackendParameterStatus), psBody)
	require.Equal(t, response.NeedMessage, act.Kind)

	act = feed(byte(types.BackendCommandComplete), []byte("SELECT 1\x00"))
	require.Equal(t, response.NeedMessage, act.Kind)

	act = feed(byte(types.BackendReady), []byte{'I'})
	require.Equal(t, response.Terminal, act.Kind)
	require.NoError(t, act.Err)

	assert.Equal(t, []byte{byte(types.BackendCommandComplete)}, h.tags)
}

func TestDispatcherCountsSyncsAcrossMultipleReadyForQuery(t *testing.T) {
	h := &recordingHandler{}
	d := response.New(2, h)

	act := d.Feed(byte(types.BackendReady), []byte{'I'})
	assert.Equal(t, response.NeedMessage, act.Kind)

	act = d.Feed(byte(types.BackendReady), []byte{'I'})
	assert.Equal(t, response.Terminal, act.Kind)
}

func TestDispatcherCapturesFirstErrorFromErrorResponse(t *testing.T) {
	h := &recordingHandler{}
	d := response.New(1, h)

	var errBody []byte
	errBody = append(errBody, 'S')
	errBody = append(errBody, []byte("ERROR\x00")...)
	errBody = append(errBody, 'C')
	errBody = append(errBody, []byte("42601\x00")...)
	errBody = append(errBody, 0)

	d.Feed(byte(types.BackendErrorResponse), errBody)
	act := d.Feed(byte(types.BackendReady), []byte{'E'})
	assert.Equal(t, response.Terminal, act.Kind)
	require.Error(t, act.Err)
}

// TestDispatcherSynthesizesSkippedSteps covers the server's skip-to-Sync
// behavior: after the Parse of a Parse+Bind+Describe+Execute+Sync segment
// fails, the server answers nothing until ReadyForQuery, so the handler
// must be given one placeholder per unanswered step.
func TestDispatcherSynthesizesSkippedSteps(t *testing.T) {
	h := &recordingHandler{}
	d := response.New(1, h).TrackRequest([]types.FrontendMessage{
		types.FrontendParse,
		types.FrontendBind,
		types.FrontendDescribe,
		types.FrontendExecute,
		types.FrontendSync,
	})

	var errBody []byte
	errBody = append(errBody, 'S')
	errBody = append(errBody, []byte("ERROR\x00")...)
	errBody = append(errBody, 'C')
	errBody = append(errBody, []byte("42601\x00")...)
	errBody = append(errBody, 0)

	act := d.Feed(byte(types.BackendErrorResponse), errBody)
	require.Equal(t, response.NeedMessage, act.Kind)

	act = d.Feed(byte(types.BackendReady), []byte{'E'})
	require.Equal(t, response.Terminal, act.Kind)
	require.Error(t, act.Err)

	assert.Equal(t, []byte{
		byte(types.BackendErrorResponse),
		byte(types.SkippedBind),
		byte(types.SkippedDescribe),
		byte(types.SkippedExecute),
	}, h.tags)
}

// TestDispatcherNoPlaceholdersAfterCompletedSteps verifies the cursor
// tracks server progress: steps already answered before the error are not
// synthesized again.
func TestDispatcherNoPlaceholdersAfterCompletedSteps(t *testing.T) {
	h := &recordingHandler{}
	d := response.New(1, h).TrackRequest([]types.FrontendMessage{
		types.FrontendParse,
		types.FrontendBind,
		types.FrontendDescribe,
		types.FrontendExecute,
		types.FrontendSync,
	})

	d.Feed(byte(types.BackendParseComplete), nil)
	d.Feed(byte(types.BackendBindComplete), nil)

	var errBody []byte
	errBody = append(errBody, 'M')
	errBody = append(errBody, []byte("boom\x00")...)
	errBody = append(errBody, 0)
	d.Feed(byte(types.BackendErrorResponse), errBody)

	act := d.Feed(byte(types.BackendReady), []byte{'E'})
	require.Equal(t, response.Terminal, act.Kind)

	assert.Equal(t, []byte{
		byte(types.BackendParseComplete),
		byte(types.BackendBindComplete),
		byte(types.BackendErrorResponse),
		byte(types.SkippedExecute),
	}, h.tags)
}

func TestDispatcherNotificationCallback(t *testing.T) {
	h := &recordingHandler{}
	d := response.New(1, h)

	var gotPID int32
	var gotChan, gotPayload string
	d.OnNotification(func(pid int32, channel, payload string) {
		gotPID, gotChan, gotPayload = pid, channel, payload
	})

	body := make([]byte, 0)
	body = append(body, 0, 0, 0, 7) // pid = 7
	body = append(body, []byte("chan\x00")...)
	body = append(body, []byte("payload\x00")...)

	act := d.Feed(byte(types.BackendNotificationResponse), body)
	require.Equal(t, response.NeedMessage, act.Kind)
	assert.Equal(t, int32(7), gotPID)
	assert.Equal(t, "chan", gotChan)
	assert.Equal(t, "payload", gotPayload)
}
