// Package cryptox implements snapshot sealing for the persistence
// layer: values are serialized to JSON and encrypted with AES-GCM under
// a key derived with Argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/overflowhosting/lockscreen/internal/common"
	"golang.org/x/crypto/argon2"
)

const nonceSize = 12

// ErrBlobTooShort means the stored blob is shorter than a nonce and
// cannot have been produced by Seal.
var ErrBlobTooShort = errors.New("encrypted blob too short")

// DeriveKey derives a 32-byte AES-256 key from a secret and salt using
// Argon2id with the parameters used throughout the project.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// Seal serializes v to JSON and encrypts it with AES-GCM. The random
// 12-byte nonce is prepended to the ciphertext so the result is a
// single self-contained blob suitable for one storage column.
func Seal(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(nonceSize)
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return append(nonce, ciphertext...), nil
}

// Open decrypts a blob produced by Seal and unmarshals the plaintext
// JSON into v. A tampered or truncated blob fails authentication.
func Open(blob, key []byte, v any) error {
	if len(blob) < nonceSize {
		return ErrBlobTooShort
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}
