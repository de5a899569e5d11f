// Package message implements the bit-exact serialization and parsing half
// of the wire codec: typed parse functions for every backend message this
// client must understand, and builders for every frontend message it must
// emit. All integers are signed big-endian; strings are NUL terminated
// unless length-prefixed.
package message

import (
	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/types"
)

// AuthRequest is the decoded body of an Authentication (R) message. Kind
// selects which of the following fields, if any, are populated.
type AuthRequest struct {
	Kind AuthKind
	// Salt is populated for AuthMD5Password.
	Salt [4]byte
	// Mechanisms is populated for AuthSASL (the list of SASL mechanism names
	// the server offers, usually just "SCRAM-SHA-256").
	Mechanisms []string
	// Data is populated for AuthSASLContinue and AuthSASLFinal.
	Data []byte
}

// AuthKind enumerates the Authentication sub-message codes.
type AuthKind int32

const (
	AuthOK                AuthKind = 0
	AuthKerberosV5        AuthKind = 2
	AuthCleartextPassword AuthKind = 3
	AuthMD5Password       AuthKind = 5
	AuthGSS               AuthKind = 7
	AuthGSSContinue       AuthKind = 8
	AuthSSPI              AuthKind = 9
	AuthSASL              AuthKind = 10
	AuthSASLContinue      AuthKind = 11
	AuthSASLFinal         AuthKind = 12
)

// ParseAuth decodes an Authentication message body.
func ParseAuth(body []byte) (AuthRequest, error) {
	v := buffer.NewView(body)
	kindRaw, err := v.GetInt32()
	if err != nil {
		return AuthRequest{}, err
	}
	kind := AuthKind(kindRaw)

	req := AuthRequest{Kind: kind}
	switch kind {
	case AuthOK, AuthKerberosV5, AuthCleartextPassword, AuthGSS, AuthSSPI:
		return req, expectEnd(v)
	case AuthMD5Password:
		salt, err := v.GetBytes(4)
		if err != nil {
			return AuthRequest{}, err
		}
		copy(req.Salt[:], salt)
		return req, expectEnd(v)
	case AuthSASL:
		// The mechanism list is a sequence of C-strings closed by an empty
		// one.
		for {
			name, err := v.GetString()
			if err != nil {
				return AuthRequest{}, err
			}
			if name == "" {
				break
			}
			req.Mechanisms = append(req.Mechanisms, name)
		}
		return req, expectEnd(v)
	case AuthSASLContinue, AuthSASLFinal:
		req.Data = v.Bytes()
		return req, nil
	default:
		return AuthRequest{}, pgerr.New(pgerr.KindProtocolValue, "unknown authentication request kind")
	}
}

// expectEnd asserts the view's cursor reached the end of the message body;
// unconsumed trailing bytes mean the parser and the wire disagree about the
// message's shape.
func expectEnd(v *buffer.View) error {
	if v.Remaining() != 0 {
		return pgerr.New(pgerr.KindExtraBytes, "trailing bytes after message body")
	}
	return nil
}

// BackendKeyData is the decoded body of a BackendKeyData (K) message.
type BackendKeyData struct {
	ProcessID int32
	SecretKey int32
}

func ParseBackendKeyData(body []byte) (BackendKeyData, error) {
	v := buffer.NewView(body)
	pid, err := v.GetInt32()
	if err != nil {
		return BackendKeyData{}, err
	}
	key, err := v.GetInt32()
	if err != nil {
		return BackendKeyData{}, err
	}
	return BackendKeyData{ProcessID: pid, SecretKey: key}, expectEnd(v)
}

// ParameterStatus is the decoded body of a ParameterStatus (S) message.
type ParameterStatus struct {
	Name  string
	Value string
}

func ParseParameterStatus(body []byte) (ParameterStatus, error) {
	v := buffer.NewView(body)
	name, err := v.GetString()
	if err != nil {
		return ParameterStatus{}, err
	}
	value, err := v.GetString()
	if err != nil {
		return ParameterStatus{}, err
	}
	return ParameterStatus{Name: name, Value: value}, expectEnd(v)
}

// ReadyForQuery is the decoded body of a ReadyForQuery (Z) message.
type ReadyForQuery struct {
	Status types.ServerStatus
}

func ParseReadyForQuery(body []byte) (ReadyForQuery, error) {
	v := buffer.NewView(body)
	status, err := v.GetByte()
	if err != nil {
		return ReadyForQuery{}, err
	}
	return ReadyForQuery{Status: types.ServerStatus(status)}, expectEnd(v)
}

// FieldDescription is one column entry of a RowDescription (T) message.
type FieldDescription struct {
	Name         string
	TableOID     int32
	AttrNo       int16
	DataTypeOID  int32
	DataTypeSize int16
	TypeModifier int32
	Format       types.FormatCode
}

// RowDescription is the decoded body of a RowDescription (T) message.
type RowDescription struct {
	Fields []FieldDescription
}

func ParseRowDescription(body []byte) (RowDescription, error) {
	v := buffer.NewView(body)
	count, err := v.GetInt16()
	if err != nil {
		return RowDescription{}, err
	}

	fields := make([]FieldDescription, 0, count)
	for i := int16(0); i < count; i++ {
		name, err := v.GetString()
		if err != nil {
			return RowDescription{}, err
		}
		tableOID, err := v.GetInt32()
		if err != nil {
			return RowDescription{}, err
		}
		attrNo, err := v.GetInt16()
		if err != nil {
			return RowDescription{}, err
		}
		typeOID, err := v.GetInt32()
		if err != nil {
			return RowDescription{}, err
		}
		typeSize, err := v.GetInt16()
		if err != nil {
			return RowDescription{}, err
		}
		typeMod, err := v.GetInt32()
		if err != nil {
			return RowDescription{}, err
		}
		format, err := v.GetInt16()
		if err != nil {
			return RowDescription{}, err
		}

		fields = append(fields, FieldDescription{
			Name:         name,
			TableOID:     tableOID,
			AttrNo:       attrNo,
			DataTypeOID:  typeOID,
			DataTypeSize: typeSize,
			TypeModifier: typeMod,
			Format:       types.FormatCode(format),
		})
	}

	return RowDescription{Fields: fields}, expectEnd(v)
}

// DataRow is the decoded body of a DataRow (D) message: the raw,
// still-encoded column values. A nil entry denotes SQL NULL.
type DataRow struct {
	Values [][]byte
}

func ParseDataRow(body []byte) (DataRow, error) {
	v := buffer.NewView(body)
	count, err := v.GetInt16()
	if err != nil {
		return DataRow{}, err
	}

	values := make([][]byte, 0, count)
	for i := int16(0); i < count; i++ {
		size, err := v.GetInt32()
		if err != nil {
			return DataRow{}, err
		}
		val, err := v.GetBytes(size)
		if err != nil {
			return DataRow{}, err
		}
		values = append(values, val)
	}

	return DataRow{Values: values}, expectEnd(v)
}

// CommandComplete is the decoded body of a CommandComplete (C) message.
type CommandComplete struct {
	Tag string
}

func ParseCommandComplete(body []byte) (CommandComplete, error) {
	v := buffer.NewView(body)
	tag, err := v.GetString()
	if err != nil {
		return CommandComplete{}, err
	}
	return CommandComplete{Tag: tag}, expectEnd(v)
}

// ParameterDescription is the decoded body of a ParameterDescription (t)
// message.
type ParameterDescription struct {
	OIDs []int32
}

func ParseParameterDescription(body []byte) (ParameterDescription, error) {
	v := buffer.NewView(body)
	count, err := v.GetInt16()
	if err != nil {
		return ParameterDescription{}, err
	}

	oids := make([]int32, 0, count)
	for i := int16(0); i < count; i++ {
		oid, err := v.GetInt32()
		if err != nil {
			return ParameterDescription{}, err
		}
		oids = append(oids, oid)
	}
	return ParameterDescription{OIDs: oids}, expectEnd(v)
}

// NotificationResponse is the decoded body of a NotificationResponse (A)
// message, sent asynchronously by LISTEN/NOTIFY.
type NotificationResponse struct {
	BackendPID int32
	Channel    string
	Payload    string
}

func ParseNotificationResponse(body []byte) (NotificationResponse, error) {
	v := buffer.NewView(body)
	pid, err := v.GetInt32()
	if err != nil {
		return NotificationResponse{}, err
	}
	channel, err := v.GetString()
	if err != nil {
		return NotificationResponse{}, err
	}
	payload, err := v.GetString()
	if err != nil {
		return NotificationResponse{}, err
	}
	return NotificationResponse{BackendPID: pid, Channel: channel, Payload: payload}, expectEnd(v)
}

// errFieldType is the one-byte tag preceding each field of an
// ErrorResponse/NoticeResponse.
// https://www.postgresql.org/docs/current/protocol-error-fields.html
type errFieldType byte

const (
	errFieldSeverity         errFieldType = 'S'
	errFieldSeverityNonLocal errFieldType = 'V'
	errFieldSQLState         errFieldType = 'C'
	errFieldMessage          errFieldType = 'M'
	errFieldDetail           errFieldType = 'D'
	errFieldHint             errFieldType = 'H'
	errFieldPosition         errFieldType = 'P'
	errFieldInternalPosition errFieldType = 'p'
	errFieldInternalQuery    errFieldType = 'q'
	errFieldWhere            errFieldType = 'W'
	errFieldSchemaName       errFieldType = 's'
	errFieldTableName        errFieldType = 't'
	errFieldColumnName       errFieldType = 'c'
	errFieldDataTypeName     errFieldType = 'd'
	errFieldConstraintName   errFieldType = 'n'
	errFieldSrcFile          errFieldType = 'F'
	errFieldSrcLine          errFieldType = 'L'
	errFieldSrcFunction      errFieldType = 'R'
)

// ParseDiagnostics decodes the field-sequence body shared by ErrorResponse
// (E) and NoticeResponse (N) messages into a [pgerr.Diagnostics].
func ParseDiagnostics(body []byte) (pgerr.Diagnostics, error) {
	v := buffer.NewView(body)
	var d pgerr.Diagnostics

	for {
		tag, err := v.GetByte()
		if err != nil {
			return pgerr.Diagnostics{}, err
		}
		if tag == 0 {
			break
		}

		val, err := v.GetString()
		if err != nil {
			return pgerr.Diagnostics{}, err
		}

		switch errFieldType(tag) {
		case errFieldSeverity, errFieldSeverityNonLocal:
			d.Severity = val
		case errFieldSQLState:
			d.Code = codeOf(val)
		case errFieldMessage:
			d.Message = val
		case errFieldDetail:
			d.Detail = val
		case errFieldHint:
			d.Hint = val
		case errFieldPosition:
			d.Position = atoi32(val)
		case errFieldInternalPosition:
			d.InternalPosition = atoi32(val)
		case errFieldInternalQuery:
			d.InternalQuery = val
		case errFieldWhere:
			d.Where = val
		case errFieldSchemaName:
			d.SchemaName = val
		case errFieldTableName:
			d.TableName = val
		case errFieldColumnName:
			d.ColumnName = val
		case errFieldDataTypeName:
			d.DataTypeName = val
		case errFieldConstraintName:
			d.ConstraintName = val
		case errFieldSrcFile:
			d.File = val
		case errFieldSrcLine:
			d.Line = atoi32(val)
		case errFieldSrcFunction:
			d.Routine = val
		}
	}

	return d, expectEnd(v)
}
