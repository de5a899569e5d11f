package request

import (
	"github.com/lib/pq/oid"

	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/types"
)

// Request is the serialized output of a [Builder]: an opaque byte vector
// ready to hand to a transport, plus the bookkeeping the response
// dispatcher needs to drive it — how many ReadyForQuery messages to expect
// and which frontend messages were actually emitted.
type Request struct {
	Payload []byte
	Tags    []types.FrontendMessage
	Syncs   int
}

// Builder assembles one [Request] at a time. It is not safe for concurrent
// use and is not reusable once Build is called; construct a fresh Builder
// per request.
type Builder struct {
	w     *buffer.Writer
	buf   []byte
	tags  []types.FrontendMessage
	syncs int
	err   error
}

// New constructs an empty request builder.
func New() *Builder {
	return &Builder{w: buffer.NewWriter()}
}

func (b *Builder) emit(tag types.FrontendMessage, msg []byte, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	// msg aliases the builder's shared Writer; copy it into buf immediately
	// so the next Start/Reset on w cannot clobber bytes already recorded.
	b.buf = append(b.buf, msg...)
	b.tags = append(b.tags, tag)
}

// AddSimpleQuery emits a Query message for the simple query protocol. The
// response is a sequence terminating in exactly one ReadyForQuery.
func (b *Builder) AddSimpleQuery(sql string) *Builder {
	msg, err := message.BuildSimpleQuery(b.w, sql)
	b.emit(types.FrontendSimpleQuery, msg, err)
	b.syncs++
	return b
}

// AddPrepare emits a Parse message for statement (empty name for the
// unnamed statement), optionally declaring the OIDs of parameters known
// ahead of time; a zero OID lets the server infer the type.
func (b *Builder) AddPrepare(statement, sql string, paramOIDs []oid.Oid) *Builder {
	oids := make([]int32, len(paramOIDs))
	for i, o := range paramOIDs {
		oids[i] = int32(o)
	}
	msg, err := message.BuildParse(b.w, statement, sql, oids)
	b.emit(types.FrontendParse, msg, err)
	return b
}

// AddExecute emits Bind + Describe(portal) + Execute(portal, max_rows=0) +
// Sync for a previously prepared, possibly unnamed, statement. Binary
// parameter format is used iff every parameter in params supports it.
func (b *Builder) AddExecute(statement string, params []Param, resultFormat types.FormatCode) *Builder {
	b.bindDescribeExecute("", statement, params, resultFormat)
	return b.AddSync()
}

// AddQuery is equivalent to preparing an anonymous statement and executing
// it in one extended-query round trip: Parse(statement_name="")+Bind+
// Describe+Execute+Sync.
func (b *Builder) AddQuery(sql string, params []Param, resultFormat types.FormatCode) *Builder {
	oids := make([]oid.Oid, len(params))
	for i, p := range params {
		oids[i] = p.OID
	}
	b.AddPrepare("", sql, oids)
	b.bindDescribeExecute("", "", params, resultFormat)
	return b.AddSync()
}

func (b *Builder) bindDescribeExecute(portal, statement string, params []Param, resultFormat types.FormatCode) {
	binary := allBinary(params)
	format := paramFormat(binary)

	bindParams := make([]message.BindParameter, len(params))
	for i, p := range params {
		if p.IsNull {
			bindParams[i] = message.BindParameter{Format: format, Value: nil}
			continue
		}
		if binary {
			bindParams[i] = message.BindParameter{Format: format, Value: p.Binary}
		} else {
			bindParams[i] = message.BindParameter{Format: format, Value: []byte(p.Text)}
		}
	}

	bindMsg, err := message.BuildBind(b.w, portal, statement, bindParams, []types.FormatCode{resultFormat})
	b.emit(types.FrontendBind, bindMsg, err)

	descMsg, err := message.BuildDescribe(b.w, types.DescribePortal, portal)
	b.emit(types.FrontendDescribe, descMsg, err)

	execMsg, err := message.BuildExecute(b.w, portal, 0)
	b.emit(types.FrontendExecute, execMsg, err)
}

// AddSync emits a Sync message, closing out an extended-query pipeline
// segment and provoking exactly one ReadyForQuery.
func (b *Builder) AddSync() *Builder {
	msg, err := message.BuildSync(b.w)
	b.emit(types.FrontendSync, msg, err)
	b.syncs++
	return b
}

// AddFlush emits a Flush message, asking the server to deliver any pending
// response data without waiting for Sync. Flush does not provoke a
// ReadyForQuery and is not counted against Syncs.
func (b *Builder) AddFlush() *Builder {
	msg, err := message.BuildFlush(b.w)
	b.emit(types.FrontendFlush, msg, err)
	return b
}

// AddClose emits a Close message for a prepared statement or portal.
func (b *Builder) AddClose(kind types.DescribeMessage, name string) *Builder {
	msg, err := message.BuildClose(b.w, kind, name)
	b.emit(types.FrontendClose, msg, err)
	return b
}

// Build finalizes the request. It returns the first serialization error
// encountered by any Add* call, if any.
func (b *Builder) Build() (Request, error) {
	if b.err != nil {
		return Request{}, b.err
	}
	return Request{Payload: b.buf, Tags: b.tags, Syncs: b.syncs}, nil
}
