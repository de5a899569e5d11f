// Package types declares the closed set of wire protocol message tags,
// version codes, and small value types shared by every other package in
// this module. FrontendMessage is what this library emits, BackendMessage
// is what it parses.
package types

// FrontendMessage represents a message tag this client emits to the server.
type FrontendMessage byte

// BackendMessage represents a message tag this client receives from the
// server.
type BackendMessage byte

// DescribeMessage represents the subtype of a Describe frontend message.
type DescribeMessage byte

// http://www.postgresql.org/docs/current/static/protocol-message-formats.html
const (
	FrontendBind        FrontendMessage = 'B'
	FrontendClose       FrontendMessage = 'C'
	FrontendCopyData    FrontendMessage = 'd'
	FrontendCopyDone    FrontendMessage = 'c'
	FrontendCopyFail    FrontendMessage = 'f'
	FrontendDescribe    FrontendMessage = 'D'
	FrontendExecute     FrontendMessage = 'E'
	FrontendFlush       FrontendMessage = 'H'
	FrontendParse       FrontendMessage = 'P'
	FrontendPassword    FrontendMessage = 'p'
	FrontendSimpleQuery FrontendMessage = 'Q'
	FrontendSync        FrontendMessage = 'S'
	FrontendTerminate   FrontendMessage = 'X'

	BackendAuth                 BackendMessage = 'R'
	BackendBackendKeyData       BackendMessage = 'K'
	BackendBindComplete         BackendMessage = '2'
	BackendCloseComplete        BackendMessage = '3'
	BackendCommandComplete      BackendMessage = 'C'
	BackendCopyInResponse       BackendMessage = 'G'
	BackendCopyOutResponse      BackendMessage = 'H'
	BackendCopyBothResponse     BackendMessage = 'W'
	BackendDataRow              BackendMessage = 'D'
	BackendEmptyQuery           BackendMessage = 'I'
	BackendErrorResponse        BackendMessage = 'E'
	BackendNoticeResponse       BackendMessage = 'N'
	BackendNotificationResponse BackendMessage = 'A'
	BackendNoData               BackendMessage = 'n'
	BackendParameterDescription BackendMessage = 't'
	BackendParameterStatus      BackendMessage = 'S'
	BackendParseComplete        BackendMessage = '1'
	BackendPortalSuspended      BackendMessage = 's'
	BackendReady                BackendMessage = 'Z'
	BackendRowDescription       BackendMessage = 'T'

	DescribePortal    DescribeMessage = 'P'
	DescribeStatement DescribeMessage = 'S'
)

// Skipped placeholders are never sent by a server. The response dispatcher
// synthesizes them, one per frontend message the server skipped after a
// mid-segment error, so handlers observe the same positional message count
// whether or not the segment failed partway. Control bytes keep them
// disjoint from every real tag, which are all printable ASCII.
const (
	SkippedParse    BackendMessage = 0x01
	SkippedBind     BackendMessage = 0x02
	SkippedDescribe BackendMessage = 0x03
	SkippedExecute  BackendMessage = 0x04
	SkippedClose    BackendMessage = 0x05
)

func (m FrontendMessage) String() string {
	switch m {
	case FrontendBind:
		return "Bind"
	case FrontendClose:
		return "Close"
	case FrontendCopyData:
		return "CopyData"
	case FrontendCopyDone:
		return "CopyDone"
	case FrontendCopyFail:
		return "CopyFail"
	case FrontendDescribe:
		return "Describe"
	case FrontendExecute:
		return "Execute"
	case FrontendFlush:
		return "Flush"
	case FrontendParse:
		return "Parse"
	case FrontendPassword:
		return "Password"
	case FrontendSimpleQuery:
		return "SimpleQuery"
	case FrontendSync:
		return "Sync"
	case FrontendTerminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

func (m BackendMessage) String() string {
	switch m {
	case BackendAuth:
		return "Auth"
	case BackendBackendKeyData:
		return "BackendKeyData"
	case BackendBindComplete:
		return "BindComplete"
	case BackendCloseComplete:
		return "CloseComplete"
	case BackendCommandComplete:
		return "CommandComplete"
	case BackendCopyInResponse:
		return "CopyInResponse"
	case BackendCopyOutResponse:
		return "CopyOutResponse"
	case BackendCopyBothResponse:
		return "CopyBothResponse"
	case BackendDataRow:
		return "DataRow"
	case BackendEmptyQuery:
		return "EmptyQuery"
	case BackendErrorResponse:
		return "ErrorResponse"
	case BackendNoticeResponse:
		return "NoticeResponse"
	case BackendNotificationResponse:
		return "NotificationResponse"
	case BackendNoData:
		return "NoData"
	case BackendParameterDescription:
		return "ParameterDescription"
	case BackendParameterStatus:
		return "ParameterStatus"
	case BackendParseComplete:
		return "ParseComplete"
	case BackendPortalSuspended:
		return "PortalSuspended"
	case BackendReady:
		return "Ready"
	case BackendRowDescription:
		return "RowDescription"
	case SkippedParse:
		return "ParseSkipped"
	case SkippedBind:
		return "BindSkipped"
	case SkippedDescribe:
		return "DescribeSkipped"
	case SkippedExecute:
		return "ExecuteSkipped"
	case SkippedClose:
		return "CloseSkipped"
	default:
		return "Unknown"
	}
}

func (m DescribeMessage) String() string {
	switch m {
	case DescribePortal:
		return "Portal"
	case DescribeStatement:
		return "Statement"
	default:
		return "Unknown"
	}
}

// FormatCode represents the encoding format of a parameter or result column.
type FormatCode int16

const (
	// TextFormat is the default, text format.
	TextFormat FormatCode = 0
	// BinaryFormat is an alternative, binary, encoding.
	BinaryFormat FormatCode = 1
)

// ServerStatus represents the transaction status reported by ReadyForQuery.
type ServerStatus byte

const (
	ServerIdle              ServerStatus = 'I'
	ServerTransactionBlock  ServerStatus = 'T'
	ServerTransactionFailed ServerStatus = 'E'
)
