package webauthn

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/storage"
)

const keychainPrefix = "authenticator_"

// UserVerifier asks the user to approve a ceremony, standing in for the
// fingerprint or face prompt. It returns false when the user declines.
type UserVerifier func(ctx context.Context, prompt string) (bool, error)

// SoftwareAuthenticator emulates a platform authenticator supporting ES256.
// Private keys live in its keychain store, one key per relying party and
// user, and never leave it.
type SoftwareAuthenticator struct {
	keychain storage.Store
	verify   UserVerifier
}

// NewSoftwareAuthenticator returns an authenticator keeping keys in
// keychain. A nil verify approves every ceremony.
func NewSoftwareAuthenticator(keychain storage.Store, verify UserVerifier) *SoftwareAuthenticator {
	if verify == nil {
		verify = func(context.Context, string) (bool, error) { return true, nil }
	}
	return &SoftwareAuthenticator{keychain: keychain, verify: verify}
}

func (a *SoftwareAuthenticator) Available(context.Context) bool { return true }

func keychainKey(rpID string, userID []byte) string {
	return keychainPrefix + rpID + "_" + hex.EncodeToString(userID)
}

func (a *SoftwareAuthenticator) Create(ctx context.Context, opts CreationOptions) (*Credential, error) {
	if opts.RPID == "" {
		return nil, ErrInvalidRelyingParty
	}
	if len(opts.Algorithms) > 0 && !slices.Contains(opts.Algorithms, AlgES256) {
		return nil, ErrAlgNotSupported
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(opts.Timeout))
	defer cancel()

	if err := a.userVerification(ctx, fmt.Sprintf("Register %s with %s", opts.UserName, opts.RPName)); err != nil {
		return nil, err
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("key encoding: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("key encoding: %w", err)
	}

	if err := a.keychain.Set(ctx, keychainKey(opts.RPID, opts.UserID), der); err != nil {
		return nil, fmt.Errorf("keychain write: %w", err)
	}

	return &Credential{
		ID:        credentialID(opts.RPID, opts.UserID),
		Algorithm: AlgES256,
		PublicKey: pub,
	}, nil
}

func (a *SoftwareAuthenticator) Get(ctx context.Context, opts RequestOptions) (*Assertion, error) {
	if opts.RPID == "" {
		return nil, ErrInvalidRelyingParty
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(opts.Timeout))
	defer cancel()

	der, ok, err := a.keychain.Get(ctx, keychainKey(opts.RPID, opts.UserID))
	if err != nil {
		return nil, fmt.Errorf("keychain read: %w", err)
	}
	if !ok {
		return nil, ErrNoCredential
	}

	if err := a.userVerification(ctx, "Sign in to "+opts.RPID); err != nil {
		return nil, err
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("keychain entry: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("keychain entry: unexpected key type %T", parsed)
	}

	sig, err := ecdsa.SignASN1(rand.Reader, key, signedData(opts.RPID, opts.Challenge))
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}

	return &Assertion{
		CredentialID: credentialID(opts.RPID, opts.UserID),
		UserID:       opts.UserID,
		Signature:    sig,
	}, nil
}

// VerifyAssertion checks an assertion signature against a PKIX public key.
func VerifyAssertion(publicKey []byte, rpID string, challenge []byte, a *Assertion) (bool, error) {
	parsed, err := x509.ParsePKIXPublicKey(publicKey)
	if err != nil {
		return false, err
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return false, fmt.Errorf("unexpected key type %T", parsed)
	}
	return ecdsa.VerifyASN1(pub, signedData(rpID, challenge), a.Signature), nil
}

// userVerification runs the verifier and gives up when ctx ends first.
func (a *SoftwareAuthenticator) userVerification(ctx context.Context, prompt string) error {
	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := a.verify(ctx, prompt)
		done <- result{ok, err}
	}()

	select {
	case <-ctx.Done():
		return ErrTimeout
	case r := <-done:
		if ctx.Err() != nil {
			return ErrTimeout
		}
		if r.err != nil {
			return fmt.Errorf("user verification: %w", r.err)
		}
		if !r.ok {
			return ErrNotAllowed
		}
		return nil
	}
}

func signedData(rpID string, challenge []byte) []byte {
	rp := sha256.Sum256([]byte(rpID))
	ch := sha256.Sum256(challenge)
	sum := sha256.Sum256(append(rp[:], ch[:]...))
	return sum[:]
}

func credentialID(rpID string, userID []byte) []byte {
	sum := sha256.Sum256(append([]byte(rpID+"\x00"), userID...))
	return sum[:16]
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
