package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is the single verification failure surfaced by [Issuer.Verify].
var ErrInvalid = errors.New("invalid token")

// ErrExpired marks the expiry case specifically. It matches ErrInvalid
// under errors.Is, so callers that do not care about the distinction keep
// a single check.
var ErrExpired = fmt.Errorf("%w: expired", ErrInvalid)

// Kind distinguishes the two token roles in a session.
type Kind string

const (
	// KindAccess is an exported constant or variable used by the session core.
	KindAccess Kind = "access"
	// KindRefresh is an exported constant or variable used by the session core.
	KindRefresh Kind = "refresh"
)

// SigningMethod defines a public type used by authcore APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 is an exported constant or variable used by the session core.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 is an exported constant or variable used by the session core.
	MethodEd25519 SigningMethod = "ed25519"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningMethod SigningMethod
	// Secret is the process-wide HS256 key. Loaded once at startup and
	// never logged.
	Secret []byte
	// PrivateKey/PublicKey carry Ed25519 key material (raw or PEM) when
	// SigningMethod is ed25519.
	PrivateKey []byte
	PublicKey  []byte
	Issuer     string
	Leeway     time.Duration
}

// ClaimsInput is the identity payload frozen into a token at issuance.
type ClaimsInput struct {
	PrincipalID string
	SessionID   string
	Role        string
	Permissions []string
}

// Claims is the decoded token payload returned by [Issuer.Verify].
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	PrincipalID string   `json:"pid"`
	SessionID   string   `json:"sid,omitempty"`
	Role        string   `json:"rol,omitempty"`
	Permissions []string `json:"prm,omitempty"`
	Kind        Kind     `json:"knd"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with the process-wide key.
//
// Issuer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Issuer struct {
	config Config
}

// NewIssuer validates the signing configuration and returns an [Issuer].
// A missing or undersized key is a startup error; the process must not
// serve logins without one.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) < 32 {
			return nil, errors.New("hs256 requires a secret of at least 32 bytes")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires a public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Issuer{config: cfg}, nil
}

// Issue signs a token of the given kind embedding input. issuedAt is now;
// expiry is now+ttl. The permission list is copied so later caller
// mutations cannot leak into the signed claims.
func (i *Issuer) Issue(input ClaimsInput, kind Kind, ttl time.Duration) (string, error) {
	if input.PrincipalID == "" {
		return "", errors.New("principal id required")
	}
	if kind != KindAccess && kind != KindRefresh {
		return "", errors.New("unknown token kind")
	}

	now := time.Now()

	var perms []string
	if len(input.Permissions) > 0 {
		perms = make([]string, len(input.Permissions))
		copy(perms, input.Permissions)
	}

	claims := Claims{
		PrincipalID: input.PrincipalID,
		SessionID:   input.SessionID,
		Role:        input.Role,
		Permissions: perms,
		Kind:        kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    i.config.Issuer,
		},
	}

	tok := jwt.NewWithClaims(i.method(), claims)

	signKey, err := i.signKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Verify checks signature integrity and expiry and returns the decoded
// claims. Every failure mode wraps [ErrInvalid]; the underlying cause is
// preserved in the message for internal logging only.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}
	if i.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.verifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("%w: claims type", ErrInvalid)
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%w: unknown kind", ErrInvalid)
	}

	return claims, nil
}

// VerifyKind verifies the token and additionally requires the embedded
// kind to match. An access token presented where a refresh token is
// expected (or vice versa) is invalid.
func (i *Issuer) VerifyKind(tokenStr string, kind Kind) (*Claims, error) {
	claims, err := i.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: kind mismatch", ErrInvalid)
	}
	return claims, nil
}

func (i *Issuer) method() jwt.SigningMethod {
	switch i.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (i *Issuer) signKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(i.config.PrivateKey)
	default:
		return i.config.Secret, nil
	}
}

func (i *Issuer) verifyKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(i.config.PublicKey)
	default:
		return i.config.Secret, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
