package typeconv

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/lib/pq/oid"
)

// Float4OID, Float8OID are the canonical OIDs for float4 and float8.
const (
	Float4OID = oid.T_float4
	Float8OID = oid.T_float8
)

func AcceptsFloat4(serverOID oid.Oid) bool { return serverOID == Float4OID }
func AcceptsFloat8(serverOID oid.Oid) bool { return serverOID == Float4OID || serverOID == Float8OID }

func EncodeTextFloat4(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func EncodeTextFloat8(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// EncodeBinaryFloat4 renders the IEEE-754 big-endian binary representation.
func EncodeBinaryFloat4(v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// EncodeBinaryFloat8 renders the IEEE-754 big-endian binary representation.
func EncodeBinaryFloat8(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func DecodeTextFloat4(s string, serverOID oid.Oid) (float32, error) {
	if !AcceptsFloat4(serverOID) {
		return 0, errIncompatible("float4", serverOID)
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errIncompatible("float4", serverOID)
	}
	return float32(v), nil
}

func DecodeTextFloat8(s string, serverOID oid.Oid) (float64, error) {
	if !AcceptsFloat8(serverOID) {
		return 0, errIncompatible("float8", serverOID)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errIncompatible("float8", serverOID)
	}
	return v, nil
}

func DecodeBinaryFloat4(b []byte, serverOID oid.Oid) (float32, error) {
	if !AcceptsFloat4(serverOID) || len(b) != 4 {
		return 0, errIncompatible("float4", serverOID)
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// DecodeBinaryFloat8 decodes the IEEE-754 big-endian binary representation.
// A float4 server column widens to float64 exactly, since every float32
// value is exactly representable in float64.
func DecodeBinaryFloat8(b []byte, serverOID oid.Oid) (float64, error) {
	switch serverOID {
	case Float4OID:
		if len(b) != 4 {
			return 0, errIncompatible("float8", serverOID)
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case Float8OID:
		if len(b) != 8 {
			return 0, errIncompatible("float8", serverOID)
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, errIncompatible("float8", serverOID)
	}
}
