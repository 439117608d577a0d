package binary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks downloaded bytes against a pinned checksum and/or a
// detached OpenPGP signature. The zero Verifier accepts everything.
type Verifier struct {
	checksum string
	keyring  openpgp.EntityList
}

// NewVerifier creates a verifier. checksum is a hex SHA-256 digest; keyring
// is an armored or binary OpenPGP public keyring. Either may be empty.
func NewVerifier(checksum string, keyring []byte) (*Verifier, error) {
	v := &Verifier{
		checksum: strings.ToLower(strings.TrimSpace(checksum)),
	}

	if v.checksum != "" {
		if _, err := hex.DecodeString(v.checksum); err != nil || len(v.checksum) != sha256.Size*2 {
			return nil, fmt.Errorf("invalid sha256 checksum %q", checksum)
		}
	}

	if len(keyring) > 0 {
		entities, err := readKeyring(keyring)
		if err != nil {
			return nil, err
		}
		v.keyring = entities
	}

	return v, nil
}

// RequiresSignature reports whether a detached signature must be fetched.
func (v *Verifier) RequiresSignature() bool {
	return len(v.keyring) > 0
}

// Verify checks data. signature is only consulted when a keyring is set.
// The strongest method that ran is returned.
func (v *Verifier) Verify(data, signature []byte) (VerificationMethod, error) {
	method := VerificationNone

	if v.checksum != "" {
		sum := sha256.Sum256(data)
		actual := hex.EncodeToString(sum[:])
		if actual != v.checksum {
			return VerificationNone, fmt.Errorf("%w: checksum mismatch:\nactual:   %s\nexpected: %s",
				ErrVerificationFailed, actual, v.checksum)
		}
		method = VerificationSHA256
	}

	if v.RequiresSignature() {
		if len(signature) == 0 {
			return VerificationNone, fmt.Errorf("%w: signature required but not available", ErrVerificationFailed)
		}
		if err := v.verifySignature(data, signature); err != nil {
			return VerificationNone, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
		}
		method = VerificationGPG
	}

	return method, nil
}

// verifySignature tries an armored signature first, then a binary one.
func (v *Verifier) verifySignature(data, signature []byte) error {
	_, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}

func readKeyring(data []byte) (openpgp.EntityList, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return keyring, nil
}
