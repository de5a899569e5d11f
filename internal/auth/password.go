package auth

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/types"
)

// md5Password computes the PasswordMessage payload for AuthenticationMD5Password:
// "md5" followed by the hex digest of md5(md5(password+user) concatenated
// with the 4-byte salt), NUL terminated.
func md5Password(user, password string, salt [4]byte) []byte {
	inner := md5.Sum([]byte(password + user))
	outer := md5.Sum(append([]byte(hex.EncodeToString(inner[:])), salt[:]...))
	return append([]byte("md5"+hex.EncodeToString(outer[:])), 0)
}

// buildSASLInitial serializes the SASLInitialResponse carried inside a
// PasswordMessage: the mechanism name as a C-string, the length of the
// initial client response, and the response bytes themselves (not NUL
// terminated — its length is explicit).
func buildSASLInitial(w *buffer.Writer, mechanism string, response []byte) ([]byte, error) {
	w.Start(types.FrontendPassword)
	w.AddCString(mechanism)
	w.AddInt32(int32(len(response)))
	w.AddBytes(response)
	return w.EndTyped()
}
