package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/message"
)

func TestParseHeaderCommandComplete(t *testing.T) {
	wire := []byte{0x43, 0x00, 0x00, 0x00, 0x0D, 0x53, 0x45, 0x4C, 0x45, 0x43, 0x54, 0x20, 0x31, 0x00}

	h, err := message.ParseHeader(wire[:message.HeaderSize])
	require.NoError(t, err)
	assert.Equal(t, byte('C'), h.Tag)
	assert.Equal(t, int32(len(wire)-message.HeaderSize), h.Length)

	body := wire[message.HeaderSize : message.HeaderSize+int(h.Length)]
	cc, err := message.ParseCommandComplete(body)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", cc.Tag)

	consumed := message.HeaderSize + int(h.Length)
	assert.Equal(t, 14, consumed)
}

func TestParseHeaderRejectsInvalidLength(t *testing.T) {
	var errKind *pgerr.Error

	// Length field 3 < 4: the length covers itself, so anything smaller is
	// impossible.
	_, err := message.ParseHeader([]byte{'C', 0, 0, 0, 3})
	require.Error(t, err)
	require.ErrorAs(t, err, &errKind)
	assert.Equal(t, pgerr.KindProtocolValue, errKind.Kind)

	_, err = message.ParseHeader([]byte{'C', 0xFF, 0xFF, 0xFF, 0xFF})
	require.Error(t, err)
}

func TestParseBackendKeyData(t *testing.T) {
	body := []byte{0, 0, 0, 10, 0, 0, 0, 42}
	bkd, err := message.ParseBackendKeyData(body)
	require.NoError(t, err)
	assert.Equal(t, int32(10), bkd.ProcessID)
	assert.Equal(t, int32(42), bkd.SecretKey)
}

func TestParseRowDescriptionAndDataRow(t *testing.T) {
	w := rowDescBody(t)
	rd, err := message.ParseRowDescription(w)
	require.NoError(t, err)
	require.Len(t, rd.Fields, 2)
	assert.Equal(t, "f3", rd.Fields[0].Name)
	assert.Equal(t, "f1", rd.Fields[1].Name)

	dataRowBody := []byte{
		0, 2, // field count
		0, 0, 0, 2, '4', '2', // "42"
		0, 0, 0, 2, 'h', 'i', // "hi"
	}
	dr, err := message.ParseDataRow(dataRowBody)
	require.NoError(t, err)
	require.Len(t, dr.Values, 2)
	assert.Equal(t, "42", string(dr.Values[0]))
	assert.Equal(t, "hi", string(dr.Values[1]))
}

func rowDescBody(t *testing.T) []byte {
	t.Helper()
	var b []byte
	b = append(b, 0, 2) // field count

	appendField := func(name string, oid int32) {
		b = append(b, []byte(name)...)
		b = append(b, 0)
		b = append(b, 0, 0, 0, 0) // table oid
		b = append(b, 0, 0)       // attno
		b = append(b, byte(oid>>24), byte(oid>>16), byte(oid>>8), byte(oid))
		b = append(b, 0, 4)                   // type size
		b = append(b, 0xFF, 0xFF, 0xFF, 0xFF) // type modifier -1
		b = append(b, 0, 0)                   // format text
	}
	appendField("f3", 23) // int4
	appendField("f1", 25) // text
	return b
}

// TestParseRejectsTrailingBytes: every parser asserts its cursor reached
// the end of the body; unused trailing bytes are a protocol violation.
func TestParseRejectsTrailingBytes(t *testing.T) {
	var errKind *pgerr.Error

	_, err := message.ParseBackendKeyData([]byte{0, 0, 0, 10, 0, 0, 0, 42, 0xFF})
	require.Error(t, err)
	require.ErrorAs(t, err, &errKind)
	assert.Equal(t, pgerr.KindExtraBytes, errKind.Kind)

	_, err = message.ParseReadyForQuery([]byte{'I', 'X'})
	require.Error(t, err)

	_, err = message.ParseParameterStatus([]byte("a\x00b\x00c"))
	require.Error(t, err)
}

func TestParseRejectsShortBody(t *testing.T) {
	var errKind *pgerr.Error

	_, err := message.ParseBackendKeyData([]byte{0, 0, 0, 10})
	require.Error(t, err)
	require.ErrorAs(t, err, &errKind)
	assert.Equal(t, pgerr.KindIncompleteMessage, errKind.Kind)

	// A CommandComplete tag missing its NUL terminator is truncated, not a
	// tag that happens to span the whole body.
	_, err = message.ParseCommandComplete([]byte("SELECT 1"))
	require.Error(t, err)
	require.ErrorAs(t, err, &errKind)
	assert.Equal(t, pgerr.KindIncompleteMessage, errKind.Kind)
}

func TestParseDiagnostics(t *testing.T) {
	var body []byte
	body = append(body, 'S')
	body = append(body, []byte("ERROR")...)
	body = append(body, 0)
	body = append(body, 'C')
	body = append(body, []byte("42601")...)
	body = append(body, 0)
	body = append(body, 'M')
	body = append(body, []byte("syntax error")...)
	body = append(body, 0)
	body = append(body, 0)

	d, err := message.ParseDiagnostics(body)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", d.Severity)
	assert.Equal(t, "42601", string(d.Code))
	assert.Equal(t, "syntax error", d.Message)
}
