// UUID codec (OID 2950), using "github.com/google/uuid" rather than
// hand-rolling hex parsing.
package typeconv

import (
	"github.com/google/uuid"
	"github.com/lib/pq/oid"
)

// UUIDOID is the canonical OID for the uuid type (2950).
const UUIDOID = oid.T_uuid

func AcceptsUUID(serverOID oid.Oid) bool {
	return serverOID == UUIDOID
}

// EncodeTextUUID renders the canonical 8-4-4-4-12 hex form.
func EncodeTextUUID(v uuid.UUID) string { return v.String() }

// EncodeBinaryUUID renders the 16 raw bytes.
func EncodeBinaryUUID(v uuid.UUID) []byte {
	b := make([]byte, 16)
	copy(b, v[:])
	return b
}

func DecodeTextUUID(s string, serverOID oid.Oid) (uuid.UUID, error) {
	if !AcceptsUUID(serverOID) {
		return uuid.UUID{}, errIncompatible("uuid", serverOID)
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, errIncompatible("uuid", serverOID)
	}
	return v, nil
}

func DecodeBinaryUUID(b []byte, serverOID oid.Oid) (uuid.UUID, error) {
	if !AcceptsUUID(serverOID) || len(b) != 16 {
		return uuid.UUID{}, errIncompatible("uuid", serverOID)
	}
	var v uuid.UUID
	copy(v[:], b)
	return v, nil
}
