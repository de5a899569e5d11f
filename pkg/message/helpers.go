package message

import (
	"strconv"

	"github.com/nativepg/pgclient/codes"
)

// codeOf converts the raw five-character SQLSTATE string carried in an
// ErrorResponse/NoticeResponse field into a [codes.Code]. Any value is
// accepted verbatim: the code table in package codes is the set of codes
// Postgres itself documents, not a restriction on what the wire is allowed
// to send.
func codeOf(s string) codes.Code {
	return codes.Code(s)
}

// atoi32 parses an integer diagnostics field, defaulting to zero for the
// fields (Position, InternalPosition, Line) that are frequently absent.
func atoi32(s string) int32 {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}
