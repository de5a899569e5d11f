// Package typeconv implements the type codec: text and binary
// encode/decode for the fixed set of OIDs this client understands, plus
// the compatibility predicate the row mapper uses to decide whether a
// server column can be decoded into a target field.
//
// OID constants come from "github.com/lib/pq/oid" rather than being
// redeclared as magic numbers. Each Go-observable scalar kind gets its own
// small file (bool.go, ints.go, floats.go, text.go, uuid.go, numeric.go)
// with a uniform EncodeText/EncodeBinary/DecodeText/DecodeBinary/Accepts
// shape.
package typeconv

import (
	"fmt"

	"github.com/lib/pq/oid"

	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/types"
)

// FormatFor reports the wire [types.FormatCode] to request for a value: binary
// when the codec supports it, text otherwise.
func FormatFor(supportsBinary bool) types.FormatCode {
	if supportsBinary {
		return types.BinaryFormat
	}
	return types.TextFormat
}

func errIncompatible(target string, got oid.Oid) error {
	return pgerr.New(pgerr.KindIncompatibleType, fmt.Sprintf("server column oid %d is not compatible with target type %s", got, target))
}

func errUnexpectedNull(target string) error {
	return pgerr.New(pgerr.KindUnexpectedNull, "unexpected SQL NULL for non-nullable target type "+target)
}
