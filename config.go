package authcore

import (
	"fmt"
	"time"

	"github.com/crewdesk/authcore/credential"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token      TokenConfig
	Session    SessionConfig
	Lockout    LockoutConfig
	Credential CredentialConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authcore APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte // hs256 process-wide secret
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authcore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by authcore APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	MaxAttempts int
	Duration    time.Duration
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialMode selects the credential verifier. The choice is explicit
// configuration; the engine never infers it from the environment.
type CredentialMode string

const (
	// CredentialArgon2 is an exported constant or variable used by the session core.
	CredentialArgon2 CredentialMode = "argon2"
	// CredentialDemo is an exported constant or variable used by the session core.
	// Demo mode compares plaintext; only for seeded demo directories.
	CredentialDemo CredentialMode = "demo"
)

// CredentialConfig defines a public type used by authcore APIs.
//
// CredentialConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CredentialConfig struct {
	Mode   CredentialMode
	Argon2 credential.Config
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: 1h access tokens,
// 7d refresh tokens, hs256 signing (secret must be supplied), a 5-attempt
// 15-minute lockout window, and argon2id credential hashing. Audit and
// metrics start disabled.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:     1 * time.Hour,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
			Leeway:        0,
		},
		Session: SessionConfig{
			RedisPrefix: "as",
		},
		Lockout: LockoutConfig{
			MaxAttempts: 5,
			Duration:    15 * time.Minute,
		},
		Credential: CredentialConfig{
			Mode: CredentialArgon2,
			Argon2: credential.Config{
				Memory:      65536,
				Time:        3,
				Parallelism: 2,
				SaltLength:  16,
				KeyLength:   32,
			},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func configError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, reason)
}

// Validate checks the configuration for internal consistency. Any failure
// wraps [ErrConfigInvalid] and is fatal at Build time.
func (c *Config) Validate() error {
	// Token
	if c.Token.AccessTTL <= 0 {
		return configError("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return configError("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return configError("Token RefreshTTL must be >= AccessTTL")
	}

	if c.Token.SigningMethod != "hs256" && c.Token.SigningMethod != "ed25519" {
		return configError("unsupported Token signing method")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.Secret) < 32 {
		return configError("hs256 requires a Secret of at least 32 bytes")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PrivateKey) == 0 {
		return configError("ed25519 requires PrivateKey")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
		return configError("ed25519 requires PublicKey")
	}
	if c.Token.Leeway < 0 {
		return configError("Token Leeway must be >= 0")
	}

	// Lockout
	if c.Lockout.MaxAttempts <= 0 {
		return configError("Lockout MaxAttempts must be > 0")
	}
	if c.Lockout.Duration <= 0 {
		return configError("Lockout Duration must be > 0")
	}

	// Credential
	switch c.Credential.Mode {
	case CredentialArgon2, CredentialDemo:
	default:
		return configError("Credential Mode must be 'argon2' or 'demo'")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return configError("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
