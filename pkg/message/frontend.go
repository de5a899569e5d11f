package message

import (
	"sort"

	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/types"
)

// ProtocolVersion3 is the startup protocol version negotiated by this
// client: major 3, minor 0, packed as (major<<16)|minor.
const ProtocolVersion3 int32 = 3 << 16

// BuildStartupMessage serializes a StartupMessage: protocol version followed
// by a list of name/value parameter pairs (user is mandatory), terminated by
// a single zero byte. StartupMessage is one of the untyped messages on the
// wire (no leading tag byte). The "user" key is always emitted first and the
// remaining keys in sorted order, so the same params produce the same bytes.
func BuildStartupMessage(w *buffer.Writer, params map[string]string) ([]byte, error) {
	w.StartUntyped()
	w.AddInt32(ProtocolVersion3)
	if user, ok := params["user"]; ok {
		w.AddCString("user")
		w.AddCString(user)
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "user" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.AddCString(k)
		w.AddCString(params[k])
	}
	w.AddNullTerminate()
	return w.EndUntyped()
}

// cancelRequestCode is the fixed sentinel that identifies a CancelRequest in
// place of a protocol version in the first four bytes of its body.
const cancelRequestCode int32 = 1234<<16 | 5678

// BuildCancelRequest serializes a CancelRequest: the fixed cancel sentinel
// followed by the target backend's process ID and secret key, the two
// values previously captured from a BackendKeyData message. Like
// StartupMessage, it carries no leading tag byte.
func BuildCancelRequest(w *buffer.Writer, processID, secretKey int32) ([]byte, error) {
	w.StartUntyped()
	w.AddInt32(cancelRequestCode)
	w.AddInt32(processID)
	w.AddInt32(secretKey)
	return w.EndUntyped()
}

// BuildPasswordMessage serializes a PasswordMessage (p), used for
// cleartext, MD5, and as the vehicle for every SASL response message
// (initial client-first, and the client-final).
func BuildPasswordMessage(w *buffer.Writer, payload []byte) ([]byte, error) {
	w.Start(types.FrontendPassword)
	w.AddBytes(payload)
	return w.EndTyped()
}

// BuildSimpleQuery serializes a Query (Q) message for the simple query
// protocol.
func BuildSimpleQuery(w *buffer.Writer, sql string) ([]byte, error) {
	w.Start(types.FrontendSimpleQuery)
	w.AddCString(sql)
	return w.EndTyped()
}

// BuildParse serializes a Parse (P) message: a named (or unnamed, "")
// statement, its SQL text, and the OIDs of any parameter types known ahead
// of time (0 lets the server infer the type).
func BuildParse(w *buffer.Writer, statement, sql string, paramOIDs []int32) ([]byte, error) {
	w.Start(types.FrontendParse)
	w.AddCString(statement)
	w.AddCString(sql)
	w.AddInt16(int16(len(paramOIDs)))
	for _, oid := range paramOIDs {
		w.AddInt32(oid)
	}
	return w.EndTyped()
}

// BindParameter is one parameter value supplied to [BuildBind], already
// encoded in its chosen wire format.
type BindParameter struct {
	Format types.FormatCode
	// Value is the already-encoded parameter value; nil denotes SQL NULL.
	Value []byte
}

// BuildBind serializes a Bind (B) message, binding a (possibly unnamed)
// prepared statement to a (possibly unnamed) portal with concrete parameter
// values and requested result column formats.
//
// Per the all-or-nothing binary parameter-format policy, a single format
// code is written for the whole list, taken from params[0].Format; the
// Format of the other entries is not consulted. The request builder always
// gives every parameter of one Bind the same Format.
func BuildBind(w *buffer.Writer, portal, statement string, params []BindParameter, resultFormats []types.FormatCode) ([]byte, error) {
	w.Start(types.FrontendBind)
	w.AddCString(portal)
	w.AddCString(statement)

	if len(params) == 0 {
		w.AddInt16(0)
	} else {
		w.AddInt16(1)
		w.AddInt16(int16(params[0].Format))
	}

	w.AddInt16(int16(len(params)))
	for _, p := range params {
		if p.Value == nil {
			w.AddInt32(-1)
			continue
		}
		w.AddInt32(int32(len(p.Value)))
		w.AddBytes(p.Value)
	}

	w.AddInt16(int16(len(resultFormats)))
	for _, f := range resultFormats {
		w.AddInt16(int16(f))
	}

	return w.EndTyped()
}

// BuildDescribe serializes a Describe (D) message for either a prepared
// statement or a portal.
func BuildDescribe(w *buffer.Writer, kind types.DescribeMessage, name string) ([]byte, error) {
	w.Start(types.FrontendDescribe)
	w.AddByte(byte(kind))
	w.AddCString(name)
	return w.EndTyped()
}

// BuildExecute serializes an Execute (E) message, running a (possibly
// unnamed) portal with an optional row-count limit (0 means unlimited).
func BuildExecute(w *buffer.Writer, portal string, maxRows int32) ([]byte, error) {
	w.Start(types.FrontendExecute)
	w.AddCString(portal)
	w.AddInt32(maxRows)
	return w.EndTyped()
}

// BuildClose serializes a Close (C) message for either a prepared statement
// or a portal.
func BuildClose(w *buffer.Writer, kind types.DescribeMessage, name string) ([]byte, error) {
	w.Start(types.FrontendClose)
	w.AddByte(byte(kind))
	w.AddCString(name)
	return w.EndTyped()
}

// BuildSync serializes a Sync (S) message, closing out an extended-query
// pipeline segment.
func BuildSync(w *buffer.Writer) ([]byte, error) {
	w.Start(types.FrontendSync)
	return w.EndTyped()
}

// BuildFlush serializes a Flush (H) message, asking the server to deliver
// any pending response data without waiting for Sync.
func BuildFlush(w *buffer.Writer) ([]byte, error) {
	w.Start(types.FrontendFlush)
	return w.EndTyped()
}

// BuildTerminate serializes a Terminate (X) message, the graceful
// connection shutdown request.
func BuildTerminate(w *buffer.Writer) ([]byte, error) {
	w.Start(types.FrontendTerminate)
	return w.EndTyped()
}
