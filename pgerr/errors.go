// Package pgerr implements the flat error taxonomy every operation in this
// module reports failures through, together with a Postgres-shaped
// Diagnostics payload mirroring the fields of a backend ErrorResponse /
// NoticeResponse — whether the diagnostics were parsed off the wire or
// describe a purely client-side failure.
package pgerr

import "github.com/nativepg/pgclient/codes"

// Kind enumerates the client-observable error taxonomy. It is orthogonal
// to a Postgres SQLSTATE [codes.Code]: a Kind classifies where/how the
// client failed, a Code (when present) carries the server's own
// classification.
type Kind string

const (
	KindIncompleteMessage Kind = "incomplete_message"
	KindExtraBytes        Kind = "extra_bytes"
	KindProtocolValue     Kind = "protocol_value_error"
	KindValueTooBig       Kind = "value_too_big"

	KindAuthFailed                       Kind = "auth_failed"
	KindAuthKerberosV5Unsupported        Kind = "auth_kerberos_v5_unsupported"
	KindAuthCleartextPasswordUnsupported Kind = "auth_cleartext_password_unsupported"
	KindAuthMD5PasswordUnsupported       Kind = "auth_md5_password_unsupported"
	KindAuthGSSUnsupported               Kind = "auth_gss_unsupported"
	KindAuthSSPIUnsupported              Kind = "auth_sspi_unsupported"
	KindAuthSASLUnsupported              Kind = "auth_sasl_unsupported"
	KindMandatoryExtensionNotSupported   Kind = "mandatory_scram_extension_not_supported"
	KindInvalidSCRAMMessage              Kind = "invalid_scram_message"
	KindInvalidBase64                    Kind = "invalid_base64"

	KindExecServerError            Kind = "exec_server_error"
	KindUnexpectedMessage          Kind = "unexpected_message"
	KindIncompatibleResponseType   Kind = "incompatible_response_type"
	KindIncompatibleResponseLength Kind = "incompatible_response_length"
	KindNeedsMore                  Kind = "needs_more"

	KindIncompatibleType Kind = "incompatible_type"
	KindUnexpectedNull   Kind = "unexpected_null"
)

// Diagnostics mirrors the fields of a Postgres ErrorResponse/NoticeResponse.
// All fields except Severity and Message are optional.
// https://www.postgresql.org/docs/current/protocol-error-fields.html
type Diagnostics struct {
	Severity         string
	Code             codes.Code
	Message          string
	Detail           string
	Hint             string
	Position         int32
	InternalPosition int32
	InternalQuery    string
	Where            string
	SchemaName       string
	TableName        string
	ColumnName       string
	DataTypeName     string
	ConstraintName   string
	File             string
	Line             int32
	Routine          string
}

// Error decorates a [Kind] with optional [Diagnostics], satisfying the error
// interface. It is the value type returned by every core operation on
// failure.
type Error struct {
	Kind        Kind
	Diagnostics Diagnostics
	cause       error
}

// New constructs an [*Error] carrying only a one-line message, for
// framing/codec failures that have no server diagnostics to attach.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Diagnostics: Diagnostics{Message: msg}}
}

// WithDiagnostics attaches server-reported diagnostics to a [Kind].
func WithDiagnostics(kind Kind, d Diagnostics) *Error {
	return &Error{Kind: kind, Diagnostics: d}
}

// Wrap decorates an underlying error (e.g. a transport I/O error) with a
// [Kind] while preserving Unwrap.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Diagnostics: Diagnostics{Message: cause.Error()}, cause: cause}
}

func (e *Error) Error() string {
	if e.Diagnostics.Message != "" {
		return string(e.Kind) + ": " + e.Diagnostics.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an [*Error] with the same [Kind], so callers
// can write errors.Is(err, pgerr.New(pgerr.KindAuthFailed, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
