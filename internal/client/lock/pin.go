package lock

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
)

// PINVerifier is a CredentialVerifier backed by a configured PIN. It
// stands in for platform biometrics in the terminal client. Only the
// PIN's hash is retained, and the comparison is constant-time.
type PINVerifier struct {
	hash [sha256.Size]byte
}

func NewPINVerifier(pin string) *PINVerifier {
	return &PINVerifier{hash: sha256.Sum256([]byte(pin))}
}

func (v *PINVerifier) Verify(_ context.Context, credential string) (bool, error) {
	candidate := sha256.Sum256([]byte(credential))
	return subtle.ConstantTimeCompare(v.hash[:], candidate[:]) == 1, nil
}
