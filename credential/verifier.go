package credential

// Verifier checks a presented password against a stored credential hash.
//
// Implementations must take the same code path for matching and
// non-matching inputs (constant-time comparison) and must return an error
// only for malformed stored hashes, never for a plain mismatch.
type Verifier interface {
	Verify(password, storedHash string) (bool, error)

	// DummyHash returns a well-formed stored hash that matches no password.
	// The engine verifies against it when a principal is unknown so the
	// unknown-principal and wrong-password paths cost roughly the same.
	DummyHash() string
}
