package credential

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Plain is the demo-mode [Verifier]: the stored "hash" is the password
// itself. Comparison still runs in constant time over fixed-length
// digests so a mismatch cost does not depend on the inputs.
//
// Plain exists for seeded demo directories only. Production deployments
// select [Argon2] through configuration.
type Plain struct{}

// NewPlain returns the demo verifier.
func NewPlain() *Plain {
	return &Plain{}
}

// Verify compares SHA-256 digests of the two values in constant time.
func (*Plain) Verify(password, storedHash string) (bool, error) {
	a := sha256.Sum256([]byte(password))
	b := sha256.Sum256([]byte(storedHash))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1, nil
}

// DummyHash implements [Verifier]. The NUL byte cannot appear in a
// submitted password's stored counterpart, so nothing matches it.
func (*Plain) DummyHash() string {
	return "\x00unmatchable"
}
