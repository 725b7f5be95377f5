// Package securestore exposes the credential store as one injected object.
// It composes the services over a durable and a volatile storage.Store and
// is what the client calls; nothing below it is global.
package securestore

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/services"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/dmitrijs2005/taskkeeper/internal/webauthn"
)

// DefaultRPID is the relying party id used for biometric ceremonies.
const DefaultRPID = "localhost"

// Options configures a SecureStore. Durable and Volatile are required.
type Options struct {
	Durable       storage.Store
	Volatile      storage.Store
	Hasher        cryptox.Hasher
	Authenticator webauthn.Authenticator
	SessionTTL    time.Duration
	RPID          string
	Now           func() time.Time
	Logger        logging.Logger
}

type SecureStore struct {
	durable   storage.Store
	users     services.UserService
	sessions  services.SessionManager
	tasks     services.TaskService
	biometric services.BiometricService
	avatars   services.AvatarService
}

// New wires the services. A nil Hasher means sha256, a nil Authenticator
// means no biometric support, an empty RPID means DefaultRPID.
func New(opts Options) *SecureStore {
	if opts.Hasher == nil {
		opts.Hasher, _ = cryptox.NewHasher(cryptox.SchemeSHA256)
	}
	if opts.RPID == "" {
		opts.RPID = DefaultRPID
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}

	sessions := services.NewSessionManager(opts.Volatile, opts.SessionTTL, opts.Now, opts.Logger.With("component", "sessions"))
	tasks := services.NewTaskService(opts.Durable, opts.Logger.With("component", "tasks"))
	users := services.NewUserService(opts.Durable, opts.Hasher, tasks, sessions, opts.Now, opts.Logger.With("component", "users"))
	biometric := services.NewBiometricService(opts.Durable, opts.Authenticator, users, sessions, opts.RPID,
		opts.Logger.With("component", "biometric"))

	return &SecureStore{
		durable:   opts.Durable,
		users:     users,
		sessions:  sessions,
		tasks:     tasks,
		biometric: biometric,
		avatars:   services.NewAvatarService(opts.Logger.With("component", "avatars")),
	}
}

// Durable returns the durable store for UI-level keys (theme, remembered
// user, disabling biometric login).
func (s *SecureStore) Durable() storage.Store { return s.durable }

func (s *SecureStore) GenerateToken() (string, error) { return cryptox.GenerateToken() }

func (s *SecureStore) HashPassword(password, salt string) (cryptox.PasswordHash, error) {
	return cryptox.HashPassword(password, salt)
}

func (s *SecureStore) CreateSession(ctx context.Context, email string) (string, error) {
	return s.sessions.CreateSession(ctx, email)
}

func (s *SecureStore) ValidateSession(ctx context.Context) (*models.Session, error) {
	return s.sessions.ValidateSession(ctx)
}

func (s *SecureStore) ClearSession(ctx context.Context) error {
	return s.sessions.ClearSession(ctx)
}

func (s *SecureStore) CreateUser(ctx context.Context, username, email, password string) (*models.UserRecord, error) {
	return s.users.CreateUser(ctx, username, email, password)
}

func (s *SecureStore) VerifyUser(ctx context.Context, email, password string) (*models.UserRecord, error) {
	return s.users.VerifyUser(ctx, email, password)
}

func (s *SecureStore) IsPasswordStrong(password string) bool {
	return services.IsPasswordStrong(password)
}

func (s *SecureStore) PasswordStrength(password string) services.Strength {
	return services.PasswordStrength(password)
}

func (s *SecureStore) GetUserData(ctx context.Context, email string) (*models.PublicUser, error) {
	return s.users.GetUserData(ctx, email)
}

func (s *SecureStore) UpdateUserSettings(ctx context.Context, email string, settings models.Settings) (bool, error) {
	return s.users.UpdateUserSettings(ctx, email, settings)
}

func (s *SecureStore) UpdateUserProfile(ctx context.Context, email string, upd models.ProfileUpdate) (bool, error) {
	return s.users.UpdateUserProfile(ctx, email, upd)
}

func (s *SecureStore) DeleteAccount(ctx context.Context, email string) (bool, error) {
	return s.users.DeleteAccount(ctx, email)
}

func (s *SecureStore) GetUserTasks(ctx context.Context, email string) (string, error) {
	return s.tasks.GetUserTasks(ctx, email)
}

func (s *SecureStore) SaveUserTasks(ctx context.Context, email, raw string) error {
	return s.tasks.SaveUserTasks(ctx, email, raw)
}

func (s *SecureStore) DeleteUserTasks(ctx context.Context, email string) error {
	return s.tasks.DeleteUserTasks(ctx, email)
}

// Tasks returns the typed task list helpers.
func (s *SecureStore) Tasks() services.TaskService { return s.tasks }

func (s *SecureStore) InitWebAuthn(ctx context.Context) bool {
	return s.biometric.InitWebAuthn(ctx)
}

func (s *SecureStore) EnableBiometric(ctx context.Context, email string) (bool, error) {
	return s.biometric.EnableBiometric(ctx, email)
}

func (s *SecureStore) VerifyBiometric(ctx context.Context, email string) bool {
	return s.biometric.VerifyBiometric(ctx, email)
}

func (s *SecureStore) IsBiometricEnabled(ctx context.Context, email string) (bool, error) {
	return s.biometric.IsBiometricEnabled(ctx, email)
}

func (s *SecureStore) GenerateInitialsAvatar(username string) (string, error) {
	return s.avatars.GenerateInitialsAvatar(username)
}

func (s *SecureStore) ProcessProfilePicture(ctx context.Context, data []byte, opts services.PictureOptions) (string, error) {
	return s.avatars.ProcessProfilePicture(ctx, data, opts)
}
