package pgclient_test

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient"
	"github.com/nativepg/pgclient/internal/mock"
	"github.com/nativepg/pgclient/pkg/request"
	"github.com/nativepg/pgclient/pkg/rows"
)

// frame prepends the 1-byte tag + int32 length header to body.
func frame(tag byte, body []byte) []byte {
	out := make([]byte, 0, 5+len(body))
	out = append(out, tag)
	length := uint32(len(body) + 4)
	out = append(out, byte(length>>24), byte(length>>16), byte(length>>8), byte(length))
	out = append(out, body...)
	return out
}

func int32be(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}

func cstring(s string) []byte {
	return append([]byte(s), 0)
}

// TestConnectStartupHappyPath drives the full handshake against scripted
// backend bytes: a StartupMessage for user=postgres, database=postgres,
// answered by AuthenticationOk, BackendKeyData{10,42}, a ParameterStatus,
// and ReadyForQuery('I').
func TestConnectStartupHappyPath(t *testing.T) {
	transport := mock.New()

	authOK := frame('R', int32be(0))
	backendKeyData := frame('K', append(int32be(10), int32be(42)...))
	paramStatus := frame('S', append(cstring("server_version"), cstring("16.0")...))
	readyForQuery := frame('Z', []byte{'I'})

	transport.QueueRead(authOK)
	transport.QueueRead(backendKeyData)
	transport.QueueRead(paramStatus)
	transport.QueueRead(readyForQuery)

	logger := slogt.New(t)

	conn, err := pgclient.Connect(transport, pgclient.Params{User: "postgres", Database: "postgres"},
		pgclient.WithLogger(logger))
	require.NoError(t, err)

	require.Len(t, transport.Written, 1)
	expectedStartup := []byte{
		0x00, 0x00, 0x00, 0x29, 0x00, 0x03, 0x00, 0x00, 0x75, 0x73, 0x65, 0x72, 0x00, 0x70, 0x6F, 0x73,
		0x74, 0x67, 0x72, 0x65, 0x73, 0x00,
		0x64, 0x61, 0x74, 0x61, 0x62, 0x61, 0x73, 0x65, 0x00, 0x70, 0x6F, 0x73, 0x74, 0x67, 0x72, 0x65, 0x73, 0x00,
		0x00,
	}
	assert.Equal(t, expectedStartup, transport.Written[0])

	assert.Equal(t, int32(10), conn.BackendPID())
	assert.Equal(t, int32(42), conn.CancelKey())
	v, ok := conn.ParameterStatus("server_version")
	assert.True(t, ok)
	assert.Equal(t, "16.0", v)
}

// TestConnectAuthFailure exercises the FSM's terminal error path: an
// ErrorResponse in place of an Authentication reply aborts Connect.
func TestConnectAuthFailure(t *testing.T) {
	transport := mock.New()

	var errBody []byte
	errBody = append(errBody, 'S')
	errBody = append(errBody, cstring("FATAL")...)
	errBody = append(errBody, 'C')
	errBody = append(errBody, cstring("28P01")...)
	errBody = append(errBody, 'M')
	errBody = append(errBody, cstring("password authentication failed")...)
	errBody = append(errBody, 0)

	transport.QueueRead(frame('E', errBody))

	logger := slogt.New(t)

	_, err := pgclient.Connect(transport, pgclient.Params{User: "postgres"}, pgclient.WithLogger(logger))
	require.Error(t, err)
}

// TestExecuteSimpleQueryCollectsRows drives a simple-query Execute call end
// to end against a row-sink handler, exercising RowDescription + two
// DataRow + CommandComplete + ReadyForQuery.
func TestExecuteSimpleQueryCollectsRows(t *testing.T) {
	transport := mock.New()

	transport.QueueRead(frame('R', int32be(0)))
	transport.QueueRead(frame('K', append(int32be(1), int32be(2)...)))
	transport.QueueRead(frame('Z', []byte{'I'}))

	logger := slogt.New(t)

	conn, err := pgclient.Connect(transport, pgclient.Params{User: "postgres"}, pgclient.WithLogger(logger))
	require.NoError(t, err)

	rowDesc := func() []byte {
		var b []byte
		b = append(b, 0, 1) // one field
		b = append(b, cstring("name")...)
		b = append(b, int32be(0)...)  // table oid
		b = append(b, 0, 0)           // attno
		b = append(b, int32be(25)...) // text oid
		b = append(b, 0, 0)           // type size
		b = append(b, int32be(0)...)  // type modifier
		b = append(b, 0, 0)           // format code text
		return b
	}()
	dataRowOf := func(v string) []byte {
		var b []byte
		b = append(b, 0, 1)
		b = append(b, int32be(int32(len(v)))...)
		b = append(b, []byte(v)...)
		return b
	}

	transport.QueueRead(frame('T', rowDesc))
	transport.QueueRead(frame('D', dataRowOf("alice")))
	transport.QueueRead(frame('D', dataRowOf("bob")))
	transport.QueueRead(frame('C', cstring("SELECT 2")))
	transport.QueueRead(frame('Z', []byte{'I'}))

	var dest []struct {
		Name string `db:"name"`
	}
	sink, err := rows.Into(&dest)
	require.NoError(t, err)

	req, err := request.New().AddSimpleQuery("select name from users").Build()
	require.NoError(t, err)

	err = conn.Execute(req, sink)
	require.NoError(t, err)
	require.NoError(t, sink.Err())

	require.Len(t, dest, 2)
	assert.Equal(t, "alice", dest[0].Name)
	assert.Equal(t, "bob", dest[1].Name)
}
