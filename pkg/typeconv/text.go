package typeconv

import "github.com/lib/pq/oid"

// TextOID is the canonical OID for the text type (25).
const TextOID = oid.T_text

// AcceptsText reports compatibility for a string target. varchar/bpchar
// are deliberately not accepted: text is the only string-shaped OID this
// codec understands.
func AcceptsText(serverOID oid.Oid) bool {
	return serverOID == TextOID
}

// EncodeTextText is the identity encoding: Postgres text format for the
// text type is simply the string's bytes.
func EncodeTextText(v string) string { return v }

// text has no distinct binary encoding from its text form.
func EncodeBinaryText(v string) []byte { return []byte(v) }

func DecodeTextText(s string, serverOID oid.Oid) (string, error) {
	if !AcceptsText(serverOID) {
		return "", errIncompatible("text", serverOID)
	}
	return s, nil
}

func DecodeBinaryText(b []byte, serverOID oid.Oid) (string, error) {
	if !AcceptsText(serverOID) {
		return "", errIncompatible("text", serverOID)
	}
	return string(b), nil
}
