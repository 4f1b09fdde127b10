package transport

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
)

// PinVerifier is a TrustVerifier that requires the presented chain to
// both verify against a set of roots and contain a public key whose
// SPKI SHA-256 fingerprint is pinned. With no pins configured it
// degrades to plain chain verification.
type PinVerifier struct {
	pins map[[sha256.Size]byte]struct{}

	// Roots overrides the verification roots; nil means the system
	// pool. Exposed for tests running against self-signed servers.
	Roots *x509.CertPool
}

// NewPinVerifier parses hex-encoded SPKI SHA-256 fingerprints.
func NewPinVerifier(fingerprints []string) (*PinVerifier, error) {
	v := &PinVerifier{pins: make(map[[sha256.Size]byte]struct{}, len(fingerprints))}
	for _, fp := range fingerprints {
		raw, err := hex.DecodeString(fp)
		if err != nil {
			return nil, fmt.Errorf("invalid pin %q: %w", fp, err)
		}
		if len(raw) != sha256.Size {
			return nil, fmt.Errorf("invalid pin %q: want %d bytes, got %d", fp, sha256.Size, len(raw))
		}
		var key [sha256.Size]byte
		copy(key[:], raw)
		v.pins[key] = struct{}{}
	}
	return v, nil
}

// Fingerprint returns the hex SPKI SHA-256 fingerprint of a
// certificate, as accepted by NewPinVerifier.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return hex.EncodeToString(sum[:])
}

// Verify checks the handshake's certificate chain and pins.
func (v *PinVerifier) Verify(cs tls.ConnectionState) error {
	if len(cs.PeerCertificates) == 0 {
		return errors.New("no peer certificates presented")
	}

	opts := x509.VerifyOptions{
		DNSName:       cs.ServerName,
		Roots:         v.Roots,
		Intermediates: x509.NewCertPool(),
	}
	for _, cert := range cs.PeerCertificates[1:] {
		opts.Intermediates.AddCert(cert)
	}

	chains, err := cs.PeerCertificates[0].Verify(opts)
	if err != nil {
		return err
	}

	if len(v.pins) == 0 {
		return nil
	}

	for _, chain := range chains {
		for _, cert := range chain {
			sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
			if _, ok := v.pins[sum]; ok {
				return nil
			}
		}
	}
	return errors.New("no pinned public key in certificate chain")
}
