package transport

import (
	"crypto/tls"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPinVerifier_RejectsBadInput(t *testing.T) {
	_, err := NewPinVerifier([]string{"zz"})
	require.Error(t, err)

	_, err = NewPinVerifier([]string{"abcd"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "want 32 bytes")
}

func TestNewPinVerifier_AcceptsValidFingerprints(t *testing.T) {
	fp := strings.Repeat("ab", 32)
	v, err := NewPinVerifier([]string{fp})
	require.NoError(t, err)
	require.Len(t, v.pins, 1)
}

func TestVerify_NoPeerCertificates(t *testing.T) {
	v, err := NewPinVerifier(nil)
	require.NoError(t, err)

	err = v.Verify(tls.ConnectionState{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no peer certificates")
}
