// Package webauthn abstracts the platform authenticator used for biometric
// login: a capability probe, a credential creation ceremony and an
// assertion ceremony, shaped after the WebAuthn client API.
package webauthn

import (
	"context"
	"errors"
	"time"
)

// AlgES256 is the COSE identifier of ECDSA P-256 with SHA-256.
const AlgES256 = -7

// DefaultTimeout bounds a ceremony when the options carry none.
const DefaultTimeout = 60 * time.Second

const (
	AttachmentPlatform       = "platform"
	UserVerificationRequired = "required"
)

var (
	ErrNotSupported        = errors.New("no platform authenticator")
	ErrNotAllowed          = errors.New("user verification denied")
	ErrTimeout             = errors.New("ceremony timed out")
	ErrNoCredential        = errors.New("no credential for relying party")
	ErrAlgNotSupported     = errors.New("no supported public key algorithm")
	ErrInvalidRelyingParty = errors.New("relying party id is required")
)

// CreationOptions are the inputs of a credential creation ceremony.
type CreationOptions struct {
	Challenge        []byte
	RPName           string
	RPID             string
	UserID           []byte
	UserName         string
	DisplayName      string
	Algorithms       []int
	Attachment       string
	UserVerification string
	Timeout          time.Duration
}

// RequestOptions are the inputs of an assertion ceremony. UserID, when set,
// restricts the ceremony to that user's credential.
type RequestOptions struct {
	Challenge        []byte
	RPID             string
	UserID           []byte
	UserVerification string
	Timeout          time.Duration
}

// Credential is the result of a creation ceremony. PublicKey is PKIX DER.
type Credential struct {
	ID        []byte
	Algorithm int
	PublicKey []byte
}

// Assertion is the result of an assertion ceremony. Signature is an ASN.1
// ECDSA signature over sha256(RPID) || sha256(Challenge).
type Assertion struct {
	CredentialID []byte
	UserID       []byte
	Signature    []byte
}

// Authenticator is a platform authenticator.
type Authenticator interface {
	// Available reports whether a user-verifying platform authenticator
	// exists. It has no side effects.
	Available(ctx context.Context) bool
	Create(ctx context.Context, opts CreationOptions) (*Credential, error)
	Get(ctx context.Context, opts RequestOptions) (*Assertion, error)
}

// Unsupported is the Authenticator of a device without one.
type Unsupported struct{}

func (Unsupported) Available(context.Context) bool { return false }

func (Unsupported) Create(context.Context, CreationOptions) (*Credential, error) {
	return nil, ErrNotSupported
}

func (Unsupported) Get(context.Context, RequestOptions) (*Assertion, error) {
	return nil, ErrNotSupported
}
