// Package cryptox implements one-way credential hashing and verification
// for stored passwords.
//
// Credentials are derived with scrypt and serialized as two hex fields
// joined by a single dot:
//
//	hex(derivedKey) + "." + hex(salt)
//
// The derivation parameters are package constants shared by Hash and
// Verify; changing them invalidates previously stored credentials. The
// format carries no version tag today. A well-formed credential's first
// segment is always pure hex, so a future "v2."-prefixed format can be
// introduced without ambiguity.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. Deliberately expensive: each call burns CPU and
// ~32 MiB of memory to resist offline brute force. Callers with latency
// SLOs must not run Hash or Verify inline on that path.
const (
	scryptN    = 32768 // CPU/memory cost factor (2^15)
	scryptR    = 8     // block size
	scryptP    = 1     // parallelism
	keyLength  = 64    // derived key bytes
	saltLength = 16    // random salt bytes, fresh per Hash call
)

// credentialSeparator joins the derived-key and salt hex fields.
const credentialSeparator = "."

var (
	// ErrEmptyPassword is returned when a caller tries to hash an empty string.
	ErrEmptyPassword = errors.New("cryptox: empty password")

	// ErrMalformedCredential reports a stored credential that cannot be
	// parsed. Callers must treat it as a verification mismatch (fail
	// closed) and may log it as an integrity warning; it must never reach
	// an end user as anything other than a generic credential failure.
	ErrMalformedCredential = errors.New("cryptox: malformed stored credential")
)

// HashCredential derives a storable credential from a plaintext password.
// Every call generates a fresh random salt, so hashing the same plaintext
// twice yields different serialized values that both verify.
func HashCredential(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(key) + credentialSeparator + hex.EncodeToString(salt), nil
}

// VerifyCredential re-derives a key from the plaintext and the stored salt
// and compares it against the stored key in constant time.
//
// A stored value that fails to parse returns (false, ErrMalformedCredential)
// rather than panicking or skipping the check.
func VerifyCredential(password, stored string) (bool, error) {
	key, salt, err := parseCredential(stored)
	if err != nil {
		return false, err
	}

	computed, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// parseCredential splits a stored credential back into derived key and salt.
// Strict by design: exactly two fields, valid hex, exact lengths.
func parseCredential(stored string) (key, salt []byte, err error) {
	parts := strings.Split(stored, credentialSeparator)
	if len(parts) != 2 {
		return nil, nil, ErrMalformedCredential
	}

	key, err = hex.DecodeString(parts[0])
	if err != nil || len(key) != keyLength {
		return nil, nil, ErrMalformedCredential
	}

	salt, err = hex.DecodeString(parts[1])
	if err != nil || len(salt) != saltLength {
		return nil, nil, ErrMalformedCredential
	}

	return key, salt, nil
}
