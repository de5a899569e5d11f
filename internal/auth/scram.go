// SCRAM-SHA-256 (RFC 7677): the client-first / server-first / client-final
// / server-final message exchange carried inside Authentication and
// PasswordMessage frames. Key derivation is PBKDF2-HMAC-SHA-256.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nativepg/pgclient/pgerr"
)

const scramMechanism = "SCRAM-SHA-256"

// scramState carries the values a SCRAM exchange must remember between its
// two suspend points (emit client-first / consume server-first, emit
// client-final / consume server-final).
type scramState struct {
	clientNonce     string
	clientFirstBare string
	serverFirst     string
	saltedPassword  []byte
	authMessage     string
}

// newScramState generates a fresh client nonce: 24 base64 characters of
// cryptographic random bytes.
func newScramState() (*scramState, error) {
	raw := make([]byte, 18) // 18 bytes -> 24 base64 characters
	if _, err := rand.Read(raw); err != nil {
		return nil, pgerr.Wrap(pgerr.KindAuthFailed, err)
	}
	return &scramState{clientNonce: base64.StdEncoding.EncodeToString(raw)}, nil
}

// clientFirstMessage builds the SASL initial response: "n,,n=<user>,r=<nonce>".
// The gs2 header "n,," selects "no channel binding". The returned payload is
// what gets carried inside the AuthenticationSASL PasswordMessage; the
// "client-first-message-bare" portion (from "n=" onward) is retained for the
// AuthMessage computed later.
func (s *scramState) clientFirstMessage(user string) []byte {
	s.clientFirstBare = fmt.Sprintf("n=%s,r=%s", saslName(user), s.clientNonce)
	return []byte("n,," + s.clientFirstBare)
}

// consumeServerFirst parses the server-first-message fields and validates
// that the server nonce extends the client nonce.
func (s *scramState) consumeServerFirst(raw []byte) (serverNonce string, salt []byte, iterations int, err error) {
	s.serverFirst = string(raw)

	fields := strings.Split(s.serverFirst, ",")
	var nonce, saltB64 string
	var iterStr string
	sawIterations := false

	for _, f := range fields {
		switch {
		case strings.HasPrefix(f, "r="):
			nonce = f[2:]
		case strings.HasPrefix(f, "s="):
			saltB64 = f[2:]
		case strings.HasPrefix(f, "i="):
			iterStr = f[2:]
			sawIterations = true
		case strings.HasPrefix(f, "m="):
			return "", nil, 0, pgerr.New(pgerr.KindMandatoryExtensionNotSupported, "server requires unsupported SCRAM extension")
		}
	}

	if nonce == "" || saltB64 == "" || !sawIterations {
		return "", nil, 0, pgerr.New(pgerr.KindInvalidSCRAMMessage, "malformed server-first-message")
	}
	if !strings.HasPrefix(nonce, s.clientNonce) {
		return "", nil, 0, pgerr.New(pgerr.KindInvalidSCRAMMessage, "server nonce does not extend client nonce")
	}

	// The iteration count is an unsigned 32-bit value on the wire; anything
	// outside that range (or zero) is malformed.
	n, perr := strconv.ParseUint(iterStr, 10, 32)
	if perr != nil || n == 0 {
		return "", nil, 0, pgerr.New(pgerr.KindInvalidSCRAMMessage, "invalid iteration count")
	}

	decodedSalt, derr := base64.StdEncoding.DecodeString(saltB64)
	if derr != nil {
		return "", nil, 0, pgerr.New(pgerr.KindInvalidBase64, "invalid salt encoding")
	}

	return nonce, decodedSalt, int(n), nil
}

// clientFinalMessage derives keys per RFC 7677 and builds the
// client-final-message (without-proof portion plus the computed proof),
// returning the message bytes and the ServerSignature the server-final
// message must be checked against.
func (s *scramState) clientFinalMessage(password string, serverNonce string, salt []byte, iterations int) (msg []byte, expectedServerSignature []byte) {
	s.saltedPassword = pbkdf2.Key([]byte(password), salt, iterations, sha256.Size, sha256.New)

	clientKey := hmacSHA256(s.saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)

	clientFinalWithoutProof := "c=biws,r=" + serverNonce
	s.authMessage = s.clientFirstBare + "," + s.serverFirst + "," + clientFinalWithoutProof

	clientSignature := hmacSHA256(storedKey[:], []byte(s.authMessage))
	clientProof := xorBytes(clientKey, clientSignature)

	serverKey := hmacSHA256(s.saltedPassword, []byte("Server Key"))
	serverSignature := hmacSHA256(serverKey, []byte(s.authMessage))

	final := clientFinalWithoutProof + ",p=" + base64.StdEncoding.EncodeToString(clientProof)
	return []byte(final), serverSignature
}

// verifyServerFinal parses "v=<base64(ServerSignature)>" and compares it
// against the signature computed in clientFinalMessage.
func verifyServerFinal(raw []byte, expected []byte) error {
	s := string(raw)
	if !strings.HasPrefix(s, "v=") {
		return pgerr.New(pgerr.KindInvalidSCRAMMessage, "malformed server-final-message")
	}

	got, err := base64.StdEncoding.DecodeString(s[2:])
	if err != nil {
		return pgerr.New(pgerr.KindInvalidBase64, "invalid server signature encoding")
	}

	if !hmac.Equal(got, expected) {
		return pgerr.New(pgerr.KindAuthFailed, "server signature verification failed")
	}
	return nil
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// saslName escapes ',' and '=' per RFC 5802 §5.1, as SCRAM requires for the
// username embedded in the client-first-message.
func saslName(user string) string {
	r := strings.NewReplacer("=", "=3D", ",", "=2C")
	return r.Replace(user)
}

// hasMechanism reports whether SCRAM-SHA-256 is among the mechanisms the
// server advertised in AuthenticationSASL.
func hasMechanism(mechanisms []string) bool {
	for _, m := range mechanisms {
		if m == scramMechanism {
			return true
		}
	}
	return false
}
