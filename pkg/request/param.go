// Package request implements the extended-query request builder:
// assembling a serialized request payload for either the simple query
// protocol (a single Query message) or the extended query protocol
// (Parse+Bind+Describe+Execute+Sync).
package request

import (
	"github.com/google/uuid"
	"github.com/lib/pq/oid"
	"github.com/shopspring/decimal"

	"github.com/nativepg/pgclient/pkg/typeconv"
	"github.com/nativepg/pgclient/pkg/types"
)

// Param is one erased query parameter: a value already rendered in both its
// text and (when supported) binary wire forms, tagged with the OID the
// server should interpret it as. The all-or-nothing binary policy decides
// at bind time which rendering to use for the whole parameter list, so
// both are carried here rather than chosen early.
type Param struct {
	OID       oid.Oid
	IsNull    bool
	Text      string
	Binary    []byte
	HasBinary bool
}

// Null constructs a SQL NULL parameter for the given type OID. The OID still
// matters: it tells the server how to interpret the (absent) value's type
// for overload resolution.
func Null(o oid.Oid) Param {
	return Param{OID: o, IsNull: true}
}

// Bool constructs a bool parameter.
func Bool(v bool) Param {
	return Param{OID: typeconv.BoolOID, Text: typeconv.EncodeTextBool(v), Binary: typeconv.EncodeBinaryBool(v), HasBinary: true}
}

// Int2 constructs an int16 parameter.
func Int2(v int16) Param {
	return Param{OID: typeconv.Int2OID, Text: typeconv.EncodeTextInt2(v), Binary: typeconv.EncodeBinaryInt2(v), HasBinary: true}
}

// Int4 constructs an int32 parameter.
func Int4(v int32) Param {
	return Param{OID: typeconv.Int4OID, Text: typeconv.EncodeTextInt4(v), Binary: typeconv.EncodeBinaryInt4(v), HasBinary: true}
}

// Int8 constructs an int64 parameter.
func Int8(v int64) Param {
	return Param{OID: typeconv.Int8OID, Text: typeconv.EncodeTextInt8(v), Binary: typeconv.EncodeBinaryInt8(v), HasBinary: true}
}

// Float4 constructs a float32 parameter.
func Float4(v float32) Param {
	return Param{OID: typeconv.Float4OID, Text: typeconv.EncodeTextFloat4(v), Binary: typeconv.EncodeBinaryFloat4(v), HasBinary: true}
}

// Float8 constructs a float64 parameter.
func Float8(v float64) Param {
	return Param{OID: typeconv.Float8OID, Text: typeconv.EncodeTextFloat8(v), Binary: typeconv.EncodeBinaryFloat8(v), HasBinary: true}
}

// Text constructs a text parameter. Text has no binary rendering distinct
// from its wire bytes, but it is deliberately not marked HasBinary: binary
// parameter format is reserved for the fixed-width types that actually
// benefit from it, so a Text parameter always forces the whole bind to
// text format.
func Text(v string) Param {
	return Param{OID: typeconv.TextOID, Text: typeconv.EncodeTextText(v)}
}

// UUID constructs a uuid.UUID parameter.
func UUID(v uuid.UUID) Param {
	return Param{OID: typeconv.UUIDOID, Text: typeconv.EncodeTextUUID(v), Binary: typeconv.EncodeBinaryUUID(v), HasBinary: true}
}

// Numeric constructs a decimal.Decimal parameter. NUMERIC has no binary
// codec in this client (see pkg/typeconv/numeric.go), so it always forces
// the whole bind to text format when present.
func Numeric(v decimal.Decimal) Param {
	return Param{OID: typeconv.NumericOID, Text: typeconv.EncodeTextNumeric(v)}
}

// allBinary reports whether every parameter in params supports binary
// format, the only condition under which the whole bind uses binary
// parameter format.
func allBinary(params []Param) bool {
	for _, p := range params {
		if p.IsNull {
			continue
		}
		if !p.HasBinary {
			return false
		}
	}
	return true
}

func paramFormat(binary bool) types.FormatCode {
	if binary {
		return types.BinaryFormat
	}
	return types.TextFormat
}
