// Package auth implements the startup/auth FSM: the state machine that
// drives the login sequence — StartupMessage, the authentication
// sub-protocol (including SCRAM-SHA-256), and absorbing BackendKeyData /
// ParameterStatus / ReadyForQuery — without itself ever touching a socket.
package auth

import (
	"log/slog"

	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/types"
)

// Params are the login credentials driving the FSM.
type Params struct {
	User     string
	Password string
	Database string
}

// Result is what the FSM yields on success.
type Result struct {
	ProcessID       int32
	SecretKey       int32
	ParameterStatus map[string]string
	// AuthMethod names the authentication method the server requested
	// ("trust", "cleartext", "md5", "scram-sha-256"), for metrics/logging.
	AuthMethod string
}

// State is the FSM's discriminant.
type State int

const (
	stateStart State = iota
	stateAwaitAuthReply
	stateAwaitScramServerFirst
	stateAwaitScramServerFinal
	stateAwaitReady
	stateDone
	stateError
)

// ActionKind discriminates the variant carried by an [Action].
type ActionKind int

const (
	// Write asks the caller to write Bytes to the transport, then call
	// [FSM.Resume] with no new input (the FSM advances past the write on
	// its own next call).
	Write ActionKind = iota
	// NeedMessage asks the caller to deliver the next backend message (via
	// the stream FSM) by calling [FSM.Feed].
	NeedMessage
	// Done is terminal, success or failure.
	Done
)

// Action is the result of one [FSM.Resume] call.
type Action struct {
	Kind   ActionKind
	Bytes  []byte
	Err    error
	Result Result
}

// FSM drives the login sequence. It owns no transport; [Action] tells the
// caller what to do next, and the caller reports back via [FSM.Feed].
type FSM struct {
	params Params
	logger *slog.Logger
	writer *buffer.Writer
	state  State

	scram       *scramState
	expectedSig []byte

	result      Result
	terminalErr error
}

// New constructs a login FSM ready to emit StartupMessage.
func New(params Params, logger *slog.Logger) *FSM {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSM{
		params: params,
		logger: logger,
		writer: buffer.NewWriter(),
		state:  stateStart,
		result: Result{ParameterStatus: map[string]string{}},
	}
}

// Resume advances the FSM. On the very first call it produces the
// StartupMessage [Write] action; afterwards the caller alternates between
// performing the requested I/O and calling Resume again, feeding backend
// messages in via [FSM.Feed] whenever the FSM asks for one.
func (f *FSM) Resume() Action {
	switch f.state {
	case stateStart:
		params := map[string]string{"user": f.params.User}
		if f.params.Database != "" {
			params["database"] = f.params.Database
		}
		startup, err := message.BuildStartupMessage(f.writer, params)
		if err != nil {
			return f.fail(pgerr.Wrap(pgerr.KindProtocolValue, err))
		}
		f.state = stateAwaitAuthReply
		f.logger.Debug("-> writing startup message", slog.String("user", f.params.User))
		return Action{Kind: Write, Bytes: startup}
	case stateDone:
		return Action{Kind: Done, Result: f.result}
	case stateError:
		return Action{Kind: Done, Err: f.err()}
	default:
		return Action{Kind: NeedMessage}
	}
}

// err reconstructs the terminal error; retained via Feed's return.
func (f *FSM) err() error { return f.terminalErr }

// Feed delivers one backend message (tag + already-framed body) to the FSM
// in response to a [NeedMessage] action, returning the next [Action].
func (f *FSM) Feed(tag byte, body []byte) Action {
	switch f.state {
	case stateAwaitAuthReply:
		return f.handleAuthReply(tag, body)
	case stateAwaitScramServerFirst:
		return f.handleScramServerFirst(tag, body)
	case stateAwaitScramServerFinal:
		return f.handleScramServerFinal(tag, body)
	case stateAwaitReady:
		return f.handleAwaitReady(tag, body)
	default:
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "login FSM fed a message outside an expected state"))
	}
}

func (f *FSM) handleAuthReply(tag byte, body []byte) Action {
	if tag == byte(types.BackendErrorResponse) {
		return f.failFromError(body)
	}
	if tag != byte(types.BackendAuth) {
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "expected Authentication message"))
	}

	req, err := message.ParseAuth(body)
	if err != nil {
		return f.fail(err)
	}

	switch req.Kind {
	case message.AuthOK:
		if f.result.AuthMethod == "" {
			f.result.AuthMethod = "trust"
		}
		f.state = stateAwaitReady
		return Action{Kind: NeedMessage}

	case message.AuthCleartextPassword:
		f.result.AuthMethod = "cleartext"
		pw, err := message.BuildPasswordMessage(f.writer, append([]byte(f.params.Password), 0))
		if err != nil {
			return f.fail(pgerr.Wrap(pgerr.KindProtocolValue, err))
		}
		f.state = stateAwaitAuthReply
		return Action{Kind: Write, Bytes: pw}

	case message.AuthMD5Password:
		f.result.AuthMethod = "md5"
		hashed := md5Password(f.params.User, f.params.Password, req.Salt)
		pw, err := message.BuildPasswordMessage(f.writer, hashed)
		if err != nil {
			return f.fail(pgerr.Wrap(pgerr.KindProtocolValue, err))
		}
		f.state = stateAwaitAuthReply
		return Action{Kind: Write, Bytes: pw}

	case message.AuthSASL:
		f.result.AuthMethod = "scram-sha-256"
		if !hasMechanism(req.Mechanisms) {
			return f.fail(pgerr.New(pgerr.KindMandatoryExtensionNotSupported, "server does not advertise SCRAM-SHA-256"))
		}
		s, err := newScramState()
		if err != nil {
			return f.fail(err)
		}
		f.scram = s

		first := s.clientFirstMessage(f.params.User)
		msg, err := buildSASLInitial(f.writer, scramMechanism, first)
		if err != nil {
			return f.fail(pgerr.Wrap(pgerr.KindProtocolValue, err))
		}
		f.state = stateAwaitScramServerFirst
		return Action{Kind: Write, Bytes: msg}

	case message.AuthKerberosV5:
		return f.fail(pgerr.New(pgerr.KindAuthKerberosV5Unsupported, "Kerberos V5 authentication is not supported"))
	case message.AuthGSS, message.AuthGSSContinue:
		return f.fail(pgerr.New(pgerr.KindAuthGSSUnsupported, "GSSAPI authentication is not supported"))
	case message.AuthSSPI:
		return f.fail(pgerr.New(pgerr.KindAuthSSPIUnsupported, "SSPI authentication is not supported"))
	default:
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "unrecognized authentication request"))
	}
}

func (f *FSM) handleScramServerFirst(tag byte, body []byte) Action {
	if tag == byte(types.BackendErrorResponse) {
		return f.failFromError(body)
	}
	if tag != byte(types.BackendAuth) {
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "expected AuthenticationSASLContinue"))
	}

	req, err := message.ParseAuth(body)
	if err != nil {
		return f.fail(err)
	}
	if req.Kind != message.AuthSASLContinue {
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "expected AuthenticationSASLContinue"))
	}

	serverNonce, salt, iterations, err := f.scram.consumeServerFirst(req.Data)
	if err != nil {
		return f.fail(err)
	}

	final, expectedSig := f.scram.clientFinalMessage(f.params.Password, serverNonce, salt, iterations)
	f.expectedSig = expectedSig

	pw, err := message.BuildPasswordMessage(f.writer, final)
	if err != nil {
		return f.fail(pgerr.Wrap(pgerr.KindProtocolValue, err))
	}
	f.state = stateAwaitScramServerFinal
	return Action{Kind: Write, Bytes: pw}
}

func (f *FSM) handleScramServerFinal(tag byte, body []byte) Action {
	if tag == byte(types.BackendErrorResponse) {
		return f.failFromError(body)
	}
	if tag != byte(types.BackendAuth) {
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "expected AuthenticationSASLFinal"))
	}

	req, err := message.ParseAuth(body)
	if err != nil {
		return f.fail(err)
	}
	if req.Kind != message.AuthSASLFinal {
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "expected AuthenticationSASLFinal"))
	}

	if err := verifyServerFinal(req.Data, f.expectedSig); err != nil {
		return f.fail(err)
	}

	f.state = stateAwaitAuthReply
	return Action{Kind: NeedMessage}
}

func (f *FSM) handleAwaitReady(tag byte, body []byte) Action {
	switch tag {
	case byte(types.BackendBackendKeyData):
		bkd, err := message.ParseBackendKeyData(body)
		if err != nil {
			return f.fail(err)
		}
		f.result.ProcessID = bkd.ProcessID
		f.result.SecretKey = bkd.SecretKey
		return Action{Kind: NeedMessage}

	case byte(types.BackendParameterStatus):
		ps, err := message.ParseParameterStatus(body)
		if err != nil {
			return f.fail(err)
		}
		f.result.ParameterStatus[ps.Name] = ps.Value
		return Action{Kind: NeedMessage}

	case byte(types.BackendNoticeResponse):
		return Action{Kind: NeedMessage}

	case byte(types.BackendErrorResponse):
		return f.failFromError(body)

	case byte(types.BackendReady):
		f.state = stateDone
		return Action{Kind: Done, Result: f.result}

	default:
		return f.fail(pgerr.New(pgerr.KindUnexpectedMessage, "unexpected message while awaiting ReadyForQuery"))
	}
}

func (f *FSM) failFromError(body []byte) Action {
	diag, err := message.ParseDiagnostics(body)
	if err != nil {
		return f.fail(err)
	}
	return f.fail(pgerr.WithDiagnostics(pgerr.KindAuthFailed, diag))
}

func (f *FSM) fail(err error) Action {
	f.state = stateError
	f.terminalErr = err
	return Action{Kind: Done, Err: err}
}
