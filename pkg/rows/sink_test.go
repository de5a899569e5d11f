package rows_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/response"
	"github.com/nativepg/pgclient/pkg/rows"
	"github.com/nativepg/pgclient/pkg/types"
)

// TestSinkTwoFieldStruct decodes RowDescription{f3 int4, f1 text}, one
// DataRow{"42", "hi"} and CommandComplete into a two-field target struct,
// matching its fields to the server columns by db tag.
func TestSinkTwoFieldStruct(t *testing.T) {
	type target struct {
		F3 int32  `db:"f3"`
		F1 string `db:"f1"`
	}

	var dest []target
	sink, err := rows.Into(&dest)
	require.NoError(t, err)

	rd := message.RowDescription{Fields: []message.FieldDescription{
		{Name: "f3", DataTypeOID: 23},
		{Name: "f1", DataTypeOID: 25},
	}}
	rdBody := encodeRowDescription(rd)

	_, err = sink.OnMessage(byte(types.BackendRowDescription), rdBody)
	require.NoError(t, err)

	dataBody := encodeDataRow([][]byte{[]byte("42"), []byte("hi")})
	_, err = sink.OnMessage(byte(types.BackendDataRow), dataBody)
	require.NoError(t, err)

	_, err = sink.OnMessage(byte(types.BackendCommandComplete), []byte("SELECT 1\x00"))
	require.NoError(t, err)
	require.NoError(t, sink.Err())

	require.Len(t, dest, 1)
	assert.Equal(t, int32(42), dest[0].F3)
	assert.Equal(t, "hi", dest[0].F1)
}

func TestSinkMissingColumnDefersErrorButKeepsConsuming(t *testing.T) {
	type target struct {
		Known   string `db:"known"`
		Missing string `db:"missing"`
	}

	var dest []target
	sink, err := rows.Into(&dest)
	require.NoError(t, err)

	rd := message.RowDescription{Fields: []message.FieldDescription{
		{Name: "known", DataTypeOID: 25},
	}}
	_, err = sink.OnMessage(byte(types.BackendRowDescription), encodeRowDescription(rd))
	require.Error(t, err)

	// Further rows are consumed (no panic / no decode) despite the error.
	_, err = sink.OnMessage(byte(types.BackendDataRow), encodeDataRow([][]byte{[]byte("x")}))
	require.NoError(t, err)
	assert.Empty(t, dest)

	_, err = sink.OnMessage(byte(types.BackendCommandComplete), nil)
	require.NoError(t, err)
	require.Error(t, sink.Err())
}

func TestSinkUnexpectedNull(t *testing.T) {
	type target struct {
		Name string `db:"name"`
	}

	var dest []target
	sink, err := rows.Into(&dest)
	require.NoError(t, err)

	rd := message.RowDescription{Fields: []message.FieldDescription{{Name: "name", DataTypeOID: 25}}}
	_, err = sink.OnMessage(byte(types.BackendRowDescription), encodeRowDescription(rd))
	require.NoError(t, err)

	_, err = sink.OnMessage(byte(types.BackendDataRow), encodeDataRow([][]byte{nil}))
	require.Error(t, err)
}

func TestSinkNullablePointerField(t *testing.T) {
	type target struct {
		Name *string `db:"name"`
	}

	var dest []target
	sink, err := rows.Into(&dest)
	require.NoError(t, err)

	rd := message.RowDescription{Fields: []message.FieldDescription{{Name: "name", DataTypeOID: 25}}}
	_, err = sink.OnMessage(byte(types.BackendRowDescription), encodeRowDescription(rd))
	require.NoError(t, err)

	_, err = sink.OnMessage(byte(types.BackendDataRow), encodeDataRow([][]byte{nil}))
	require.NoError(t, err)
	_, err = sink.OnMessage(byte(types.BackendCommandComplete), nil)
	require.NoError(t, err)

	require.Len(t, dest, 1)
	assert.Nil(t, dest[0].Name)
}

// TestSinkConsumesSkippedPlaceholders: a sink whose segment was skipped
// after an upstream error sees placeholder messages instead of real ones
// and must terminate cleanly on the execute placeholder.
func TestSinkConsumesSkippedPlaceholders(t *testing.T) {
	type target struct {
		Name string `db:"name"`
	}

	var dest []target
	sink, err := rows.Into(&dest)
	require.NoError(t, err)

	res, err := sink.OnMessage(byte(types.SkippedBind), nil)
	require.NoError(t, err)
	assert.Equal(t, response.NeedsMore, res)

	res, err = sink.OnMessage(byte(types.SkippedDescribe), nil)
	require.NoError(t, err)
	assert.Equal(t, response.NeedsMore, res)

	res, err = sink.OnMessage(byte(types.SkippedExecute), nil)
	require.NoError(t, err)
	assert.Equal(t, response.Done, res)
	assert.Empty(t, dest)
}

// --- fixture helpers -------------------------------------------------

func encodeRowDescription(rd message.RowDescription) []byte {
	var b []byte
	b = append(b, byte(len(rd.Fields)>>8), byte(len(rd.Fields)))
	for _, f := range rd.Fields {
		b = append(b, []byte(f.Name)...)
		b = append(b, 0)
		b = append(b, 0, 0, 0, 0) // table oid
		b = append(b, 0, 0)       // attno
		oid := f.DataTypeOID
		b = append(b, byte(oid>>24), byte(oid>>16), byte(oid>>8), byte(oid))
		b = append(b, 0, 0)       // type size
		b = append(b, 0, 0, 0, 0) // type modifier
		b = append(b, 0, 0)       // format code (text)
	}
	return b
}

func encodeDataRow(values [][]byte) []byte {
	var b []byte
	n := len(values)
	b = append(b, byte(n>>8), byte(n))
	for _, v := range values {
		if v == nil {
			b = append(b, 0xFF, 0xFF, 0xFF, 0xFF) // -1
			continue
		}
		l := len(v)
		b = append(b, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
		b = append(b, v...)
	}
	return b
}
