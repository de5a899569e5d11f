package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeServerFirst(t *testing.T) {
	s := &scramState{} // clientNonce "" matches any prefix; isolates the parse path
	raw := []byte("r=7vha5bhElx564U6mzXimIJqdygCr/dQmx9ESrL/+FfZHVXyA,s=M8SSqYCQ4spIf9DBNNLBJA==,i=4096")

	nonce, salt, iterations, err := s.consumeServerFirst(raw)
	require.NoError(t, err)
	assert.Equal(t, "7vha5bhElx564U6mzXimIJqdygCr/dQmx9ESrL/+FfZHVXyA", nonce)
	assert.Equal(t, 4096, iterations)
	assert.Equal(t, []byte{0x33, 0xC4, 0x92, 0xA9, 0x80, 0x90, 0xE2, 0xCA, 0x48, 0x7F, 0xD0, 0xC1, 0x34, 0xD2, 0xC1, 0x24}, salt)
}

// TestClientFinalMessageKnownVectors replays the RFC 7677 example exchange
// (user "user", password "pencil", fixed nonces) and checks the computed
// ClientProof and ServerSignature against the published values.
func TestClientFinalMessageKnownVectors(t *testing.T) {
	serverNonce := "rOprNGfwEbeRWgbNEkqO%hvYDpWUa2RaTCAfuxFIlj)hNlF$k0"
	s := &scramState{
		clientNonce:     "rOprNGfwEbeRWgbNEkqO",
		clientFirstBare: "n=user,r=rOprNGfwEbeRWgbNEkqO",
		serverFirst:     "r=" + serverNonce + ",s=W22ZaJ0SNY7soEsUEjb6gQ==,i=4096",
	}

	salt, err := base64.StdEncoding.DecodeString("W22ZaJ0SNY7soEsUEjb6gQ==")
	require.NoError(t, err)

	msg, serverSig := s.clientFinalMessage("pencil", serverNonce, salt, 4096)
	assert.Equal(t,
		"c=biws,r="+serverNonce+",p=dHzbZapWIk4jUhN+Ute9ytag9zjfMHgsqmmiz7AndVQ=",
		string(msg))
	assert.Equal(t,
		"6rriTRBi23WpRR/wtup+mMhUZUn/dB5nLTJRsjl95G4=",
		base64.StdEncoding.EncodeToString(serverSig))
}

func TestVerifyServerFinal(t *testing.T) {
	raw := []byte("v=N9rueOuELVCa2VUm1hdWi5PpRrLafRO0j2lRL312E2k=")

	sig, err := base64.StdEncoding.DecodeString("N9rueOuELVCa2VUm1hdWi5PpRrLafRO0j2lRL312E2k=")
	require.NoError(t, err)
	require.Len(t, sig, 32)
	assert.Equal(t, []byte{0x37, 0xDA, 0xEE, 0x78}, sig[:4])

	require.NoError(t, verifyServerFinal(raw, sig))
}

func TestVerifyServerFinalMismatch(t *testing.T) {
	raw := []byte("v=" + base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
	err := verifyServerFinal(raw, []byte{9, 9, 9})
	require.Error(t, err)
}

func TestConsumeServerFirstIterationBounds(t *testing.T) {
	s := &scramState{}

	// Any value representable as an unsigned 32-bit integer is legal.
	_, _, iterations, err := s.consumeServerFirst([]byte("r=n,s=AAAA,i=4294967295"))
	require.NoError(t, err)
	assert.Equal(t, 4294967295, iterations)

	s = &scramState{}
	_, _, _, err = s.consumeServerFirst([]byte("r=n,s=AAAA,i=0"))
	require.Error(t, err)

	s = &scramState{}
	_, _, _, err = s.consumeServerFirst([]byte("r=n,s=AAAA,i=4294967296"))
	require.Error(t, err)
}

func TestConsumeServerFirstRejectsNonceMismatch(t *testing.T) {
	s := &scramState{clientNonce: "expectedPrefix"}
	raw := []byte("r=somethingElse,s=AAAA,i=4096")
	_, _, _, err := s.consumeServerFirst(raw)
	require.Error(t, err)
}

func TestConsumeServerFirstRejectsMandatoryExtension(t *testing.T) {
	s := &scramState{}
	raw := []byte("r=n,s=AAAA,i=4096,m=required")
	_, _, _, err := s.consumeServerFirst(raw)
	require.Error(t, err)
}

func TestBase64RoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0xAB},
		{0xAB, 0xCD},
		{0xAB, 0xCD, 0xEF},
		{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA, 0x99, 0x88},
	}
	for _, c := range cases {
		enc := base64.StdEncoding.EncodeToString(c)
		dec, err := base64.StdEncoding.DecodeString(enc)
		require.NoError(t, err)
		assert.Equal(t, c, dec)
	}

	assert.Equal(t, "/+7dzLuqmYg=", base64.StdEncoding.EncodeToString([]byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA, 0x99, 0x88}))
}
