package auth

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int32be(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}

// TestFSMCleartextHappyPath drives the login FSM through a cleartext
// password exchange: startup write, password write, then BackendKeyData and
// ReadyForQuery absorption.
func TestFSMCleartextHappyPath(t *testing.T) {
	f := New(Params{User: "postgres", Password: "hunter2"}, slogt.New(t))

	act := f.Resume()
	require.Equal(t, Write, act.Kind)
	assert.NotEmpty(t, act.Bytes) // StartupMessage

	act = f.Resume()
	require.Equal(t, NeedMessage, act.Kind)

	act = f.Feed('R', int32be(3)) // AuthenticationCleartextPassword
	require.Equal(t, Write, act.Kind)
	assert.Equal(t, byte('p'), act.Bytes[0])
	assert.Contains(t, string(act.Bytes), "hunter2")

	act = f.Resume()
	require.Equal(t, NeedMessage, act.Kind)

	act = f.Feed('R', int32be(0)) // AuthenticationOk
	require.Equal(t, NeedMessage, act.Kind)

	act = f.Feed('K', append(int32be(7), int32be(99)...))
	require.Equal(t, NeedMessage, act.Kind)

	act = f.Feed('Z', []byte{'I'})
	require.Equal(t, Done, act.Kind)
	require.NoError(t, act.Err)
	assert.Equal(t, int32(7), act.Result.ProcessID)
	assert.Equal(t, int32(99), act.Result.SecretKey)
	assert.Equal(t, "cleartext", act.Result.AuthMethod)
}

// TestFSMRejectsKerberos: unsupported legacy authentication schemes are
// terminal with a scheme-specific error.
func TestFSMRejectsKerberos(t *testing.T) {
	f := New(Params{User: "postgres"}, slogt.New(t))

	act := f.Resume()
	require.Equal(t, Write, act.Kind)
	act = f.Resume()
	require.Equal(t, NeedMessage, act.Kind)

	act = f.Feed('R', int32be(2)) // AuthenticationKerberosV5
	require.Equal(t, Done, act.Kind)
	require.Error(t, act.Err)
}
