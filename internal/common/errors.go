// Package common contains shared constants, sentinel errors and small
// helpers used across lockscreen components.
package common

import "errors"

// TrustMarker is the fixed substring carried by trust-verification
// failures so callers can recognize them without parsing free text.
const TrustMarker = "certificate validation failed"

var (
	// ErrTrustVerification means the transport refused to validate the
	// remote endpoint's identity. Never retried automatically.
	ErrTrustVerification = errors.New(TrustMarker)

	// ErrNetwork covers timeouts, connection failures, non-2xx statuses
	// and undecodable response bodies.
	ErrNetwork = errors.New("network or protocol failure")

	// ErrValidation means the input was rejected locally, before any
	// request left the device.
	ErrValidation = errors.New("validation failed")

	// ErrStorage covers encryption, read and write failures of the
	// persisted snapshot.
	ErrStorage = errors.New("storage error")

	// ErrLockedOut is the terminal security event: too many failed
	// unlock attempts, the session has been terminated.
	ErrLockedOut = errors.New("locked out")
)
