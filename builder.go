package authcore

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk/authcore/credential"
	"github.com/crewdesk/authcore/internal/limiters"
	"github.com/crewdesk/authcore/session"
	"github.com/crewdesk/authcore/token"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory UserDirectory
	verifier  credential.Verifier
	auditSink AuditSink

	built bool
}

// New starts a [Builder] with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the redis client used for lockout counters and
// session records. Without one the engine falls back to an in-process
// lockout guard and keeps no session records.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory supplies the caller's user directory. Required.
func (b *Builder) WithDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithVerifier overrides the credential verifier chosen by configuration.
// Intended for custom hash formats; most callers set Credential.Mode
// instead.
func (b *Builder) WithVerifier(v credential.Verifier) *Builder {
	b.verifier = v
	return b
}

// WithAuditSink supplies the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the [Engine]. Any
// configuration failure wraps [ErrConfigInvalid] and is fatal; a partially
// working engine is never returned.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, configError("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, configError("user directory required")
	}

	verifier := b.verifier
	if verifier == nil {
		switch cfg.Credential.Mode {
		case CredentialDemo:
			verifier = credential.NewPlain()
		default:
			v, err := credential.NewArgon2(cfg.Credential.Argon2)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
			}
			verifier = v
		}
	}

	issuer, err := token.NewIssuer(token.Config{
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		Secret:        cloneBytes(cfg.Token.Secret),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	lockoutCfg := limiters.Config{
		Threshold: cfg.Lockout.MaxAttempts,
		Duration:  cfg.Lockout.Duration,
	}

	var guard limiters.Guard
	var store *session.Store
	if b.redis != nil {
		guard = limiters.NewRedisGuard(b.redis, lockoutCfg)
		store = session.NewStore(b.redis, cfg.Session.RedisPrefix)
	} else {
		guard = limiters.NewMemoryGuard(lockoutCfg)
	}

	engine := &Engine{
		config:       cfg,
		directory:    b.directory,
		verifier:     verifier,
		issuer:       issuer,
		lockout:      guard,
		sessionStore: store,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
