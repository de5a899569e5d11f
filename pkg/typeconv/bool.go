package typeconv

import (
	"github.com/lib/pq/oid"
)

// BoolOID is the canonical OID for the bool type (16).
const BoolOID = oid.T_bool

// AcceptsBool reports whether a server column reporting serverOID can be
// decoded as a bool. No widening applies to bool.
func AcceptsBool(serverOID oid.Oid) bool {
	return serverOID == BoolOID
}

// EncodeTextBool renders the Postgres text-format boolean literal.
func EncodeTextBool(v bool) string {
	if v {
		return "t"
	}
	return "f"
}

// EncodeBinaryBool renders the one-byte binary boolean representation.
func EncodeBinaryBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeTextBool accepts {"t", "true", "1"} as true and {"f", "false", "0"}
// as false, matching Postgres's own liberal bool input parser.
func DecodeTextBool(s string, serverOID oid.Oid) (bool, error) {
	if !AcceptsBool(serverOID) {
		return false, errIncompatible("bool", serverOID)
	}
	switch s {
	case "t", "true", "1":
		return true, nil
	case "f", "false", "0":
		return false, nil
	default:
		return false, errIncompatible("bool", serverOID)
	}
}

// DecodeBinaryBool decodes the single-byte binary boolean representation.
func DecodeBinaryBool(b []byte, serverOID oid.Oid) (bool, error) {
	if !AcceptsBool(serverOID) {
		return false, errIncompatible("bool", serverOID)
	}
	if len(b) != 1 {
		return false, errIncompatible("bool", serverOID)
	}
	return b[0] != 0, nil
}
