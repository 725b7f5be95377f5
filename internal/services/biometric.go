package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/dmitrijs2005/taskkeeper/internal/webauthn"
)

const (
	challengeSize    = 32
	relyingPartyName = "Task Management App"
)

// BiometricService records per-user opt-in to platform authenticator login.
// Only the flag is stored; the credential stays with the authenticator.
// Disabling is a plain delete of common.BiometricKey(email) by the caller.
type BiometricService interface {
	InitWebAuthn(ctx context.Context) bool
	EnableBiometric(ctx context.Context, email string) (bool, error)
	VerifyBiometric(ctx context.Context, email string) bool
	IsBiometricEnabled(ctx context.Context, email string) (bool, error)
}

type biometricService struct {
	store    storage.Store
	auth     webauthn.Authenticator
	users    UserService
	sessions SessionManager
	rpID     string
	log      logging.Logger
}

// NewBiometricService returns a BiometricService using auth for ceremonies
// under relying party rpID.
func NewBiometricService(store storage.Store, auth webauthn.Authenticator, users UserService,
	sessions SessionManager, rpID string, log logging.Logger) BiometricService {
	if auth == nil {
		auth = webauthn.Unsupported{}
	}
	if log == nil {
		log = logging.NewDiscard()
	}
	return &biometricService{
		store:    store,
		auth:     auth,
		users:    users,
		sessions: sessions,
		rpID:     rpID,
		log:      log,
	}
}

// InitWebAuthn reports whether a user-verifying platform authenticator is
// available.
func (s *biometricService) InitWebAuthn(ctx context.Context) bool {
	return s.auth.Available(ctx)
}

// EnableBiometric runs the credential creation ceremony for email and, on
// success, stores the flag. It fails with Unsupported when there is no
// authenticator, NotFound for an unknown email and Platform when the
// ceremony is rejected.
func (s *biometricService) EnableBiometric(ctx context.Context, email string) (bool, error) {
	if !s.InitWebAuthn(ctx) {
		return false, common.NewUnsupportedError()
	}

	user, err := s.users.GetUserData(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, common.NewNotFoundError()
	}

	_, err = s.auth.Create(ctx, webauthn.CreationOptions{
		Challenge:        common.GenerateRandByteArray(challengeSize),
		RPName:           relyingPartyName,
		RPID:             s.rpID,
		UserID:           []byte(email),
		UserName:         email,
		DisplayName:      user.Username,
		Algorithms:       []int{webauthn.AlgES256},
		Attachment:       webauthn.AttachmentPlatform,
		UserVerification: webauthn.UserVerificationRequired,
		Timeout:          webauthn.DefaultTimeout,
	})
	if err != nil {
		s.log.Warn(ctx, "biometric enrollment rejected", "email", email, "error", err)
		return false, common.NewPlatformError(err)
	}

	if err := s.store.Set(ctx, common.BiometricKey(email), []byte(common.BiometricEnabledVal)); err != nil {
		s.log.Error(ctx, "biometric flag write failed", "email", email, "error", err)
		return false, fmt.Errorf("failed to save biometric flag: %w", err)
	}

	s.log.Info(ctx, "biometric enabled", "email", email)
	return true, nil
}

// VerifyBiometric runs the assertion ceremony for email and issues a
// session when it succeeds. Every failure yields false.
func (s *biometricService) VerifyBiometric(ctx context.Context, email string) bool {
	if !s.InitWebAuthn(ctx) {
		return false
	}

	_, err := s.auth.Get(ctx, webauthn.RequestOptions{
		Challenge:        common.GenerateRandByteArray(challengeSize),
		RPID:             s.rpID,
		UserID:           []byte(email),
		UserVerification: webauthn.UserVerificationRequired,
		Timeout:          webauthn.DefaultTimeout,
	})
	if err != nil {
		s.log.Warn(ctx, "biometric verification failed", "email", email, "error", err)
		return false
	}

	if _, err := s.sessions.CreateSession(ctx, email); err != nil {
		s.log.Error(ctx, "session after biometric login failed", "email", email, "error", err)
		return false
	}
	return true
}

// IsBiometricEnabled reports whether the flag of email is set.
func (s *biometricService) IsBiometricEnabled(ctx context.Context, email string) (bool, error) {
	v, ok, err := s.store.Get(ctx, common.BiometricKey(email))
	if err != nil {
		return false, fmt.Errorf("failed to read biometric flag: %w", err)
	}
	return ok && string(v) == common.BiometricEnabledVal, nil
}

