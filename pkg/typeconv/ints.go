package typeconv

import (
	"encoding/binary"
	"strconv"

	"github.com/lib/pq/oid"
)

// Int2OID, Int4OID, Int8OID are the canonical OIDs for int2, int4, int8.
const (
	Int2OID = oid.T_int2
	Int4OID = oid.T_int4
	Int8OID = oid.T_int8
)

// AcceptsInt4 reports compatibility for an int32 target: read-only widening
// from int2 is permitted, but not from int8 (that would be narrowing).
func AcceptsInt4(serverOID oid.Oid) bool {
	return serverOID == Int2OID || serverOID == Int4OID
}

// AcceptsInt8 reports compatibility for an int64 target: read-only widening
// from int2 and int4 is permitted.
func AcceptsInt8(serverOID oid.Oid) bool {
	return serverOID == Int2OID || serverOID == Int4OID || serverOID == Int8OID
}

// AcceptsInt2 reports compatibility for an int16 target: no widening, since
// int16 is the narrowest integer type this codec understands.
func AcceptsInt2(serverOID oid.Oid) bool {
	return serverOID == Int2OID
}

func EncodeTextInt2(v int16) string { return strconv.FormatInt(int64(v), 10) }
func EncodeTextInt4(v int32) string { return strconv.FormatInt(int64(v), 10) }
func EncodeTextInt8(v int64) string { return strconv.FormatInt(v, 10) }

func EncodeBinaryInt2(v int16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return b
}

func EncodeBinaryInt4(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func EncodeBinaryInt8(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func DecodeTextInt2(s string, serverOID oid.Oid) (int16, error) {
	if !AcceptsInt2(serverOID) {
		return 0, errIncompatible("int2", serverOID)
	}
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, errIncompatible("int2", serverOID)
	}
	return int16(n), nil
}

// DecodeTextInt4 decodes a text-format integer, widening a narrower
// server-reported OID (int2) into int32.
func DecodeTextInt4(s string, serverOID oid.Oid) (int32, error) {
	if !AcceptsInt4(serverOID) {
		return 0, errIncompatible("int4", serverOID)
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errIncompatible("int4", serverOID)
	}
	return int32(n), nil
}

// DecodeTextInt8 decodes a text-format integer, widening a narrower
// server-reported OID (int2 or int4) into int64.
func DecodeTextInt8(s string, serverOID oid.Oid) (int64, error) {
	if !AcceptsInt8(serverOID) {
		return 0, errIncompatible("int8", serverOID)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errIncompatible("int8", serverOID)
	}
	return n, nil
}

func decodeBinaryWidened(b []byte, serverOID oid.Oid) (int64, error) {
	switch serverOID {
	case Int2OID:
		if len(b) != 2 {
			return 0, errIncompatible("integer", serverOID)
		}
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case Int4OID:
		if len(b) != 4 {
			return 0, errIncompatible("integer", serverOID)
		}
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	case Int8OID:
		if len(b) != 8 {
			return 0, errIncompatible("integer", serverOID)
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, errIncompatible("integer", serverOID)
	}
}

func DecodeBinaryInt2(b []byte, serverOID oid.Oid) (int16, error) {
	if !AcceptsInt2(serverOID) {
		return 0, errIncompatible("int2", serverOID)
	}
	v, err := decodeBinaryWidened(b, serverOID)
	return int16(v), err
}

func DecodeBinaryInt4(b []byte, serverOID oid.Oid) (int32, error) {
	if !AcceptsInt4(serverOID) {
		return 0, errIncompatible("int4", serverOID)
	}
	v, err := decodeBinaryWidened(b, serverOID)
	return int32(v), err
}

func DecodeBinaryInt8(b []byte, serverOID oid.Oid) (int64, error) {
	if !AcceptsInt8(serverOID) {
		return 0, errIncompatible("int8", serverOID)
	}
	return decodeBinaryWidened(b, serverOID)
}
