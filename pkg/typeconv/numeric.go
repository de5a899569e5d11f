// NUMERIC (OID 1700) codec, text-form only: binary NUMERIC's
// variable-base-10000 digit format is deliberately not implemented; callers
// needing numeric columns request the text result format.
package typeconv

import (
	"github.com/lib/pq/oid"
	"github.com/shopspring/decimal"

	"github.com/nativepg/pgclient/pgerr"
)

// NumericOID is the canonical OID for the numeric type (1700).
const NumericOID = oid.T_numeric

func AcceptsNumeric(serverOID oid.Oid) bool {
	return serverOID == NumericOID
}

func EncodeTextNumeric(v decimal.Decimal) string {
	return v.String()
}

func DecodeTextNumeric(s string, serverOID oid.Oid) (decimal.Decimal, error) {
	if !AcceptsNumeric(serverOID) {
		return decimal.Decimal{}, errIncompatible("numeric", serverOID)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errIncompatible("numeric", serverOID)
	}
	return v, nil
}

// DecodeBinaryNumeric always fails: binary-format NUMERIC is not
// implemented by this codec (see package doc).
func DecodeBinaryNumeric([]byte, oid.Oid) (decimal.Decimal, error) {
	return decimal.Decimal{}, pgerr.New(pgerr.KindIncompatibleType, "binary-format numeric is not supported, request text format")
}
