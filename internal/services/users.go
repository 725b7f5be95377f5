package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
)

// UserService owns the user directory: every UserRecord, keyed by email,
// stored as one JSON object under common.UsersKey.
//
// Contract:
//   - CreateUser validates in this order: email format, duplicate email,
//     username length, password strength.
//   - VerifyUser distinguishes an unknown email (NotFound) from a wrong
//     password (InvalidCredentials).
//   - GetUserData never returns credential material and returns nil for an
//     unknown email.
//   - UpdateUserSettings reports false for an unknown email instead of
//     failing.
//   - UpdateUserProfile and DeleteAccount fail with NotFound for an unknown
//     email.
type UserService interface {
	CreateUser(ctx context.Context, username, email, password string) (*models.UserRecord, error)
	VerifyUser(ctx context.Context, email, password string) (*models.UserRecord, error)
	GetUserData(ctx context.Context, email string) (*models.PublicUser, error)
	UpdateUserSettings(ctx context.Context, email string, settings models.Settings) (bool, error)
	UpdateUserProfile(ctx context.Context, email string, upd models.ProfileUpdate) (bool, error)
	DeleteAccount(ctx context.Context, email string) (bool, error)
}

type userService struct {
	// mu serializes read-modify-write cycles of the directory within this
	// process. Other processes sharing the durable store are last-writer-wins.
	mu       sync.Mutex
	store    storage.Store
	hasher   cryptox.Hasher
	tasks    TaskService
	sessions SessionManager
	now      func() time.Time
	log      logging.Logger
}

// NewUserService builds a UserService. New and changed passwords are hashed
// with hasher; existing records verify with the scheme they were written
// with. tasks and sessions are used by DeleteAccount.
func NewUserService(store storage.Store, hasher cryptox.Hasher, tasks TaskService, sessions SessionManager,
	now func() time.Time, log logging.Logger) UserService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logging.NewDiscard()
	}
	return &userService{
		store:    store,
		hasher:   hasher,
		tasks:    tasks,
		sessions: sessions,
		now:      now,
		log:      log,
	}
}

type directory map[string]*models.UserRecord

func (s *userService) loadUsers(ctx context.Context) (directory, error) {
	data, ok, err := s.store.Get(ctx, common.UsersKey)
	if err != nil {
		s.log.Error(ctx, "user directory read failed", "error", err)
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	users := directory{}
	if !ok {
		return users, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("user directory is not valid JSON: %w", err)
	}
	return users, nil
}

func (s *userService) saveUsers(ctx context.Context, users directory) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("user directory encoding: %w", err)
	}
	if err := s.store.Set(ctx, common.UsersKey, data); err != nil {
		s.log.Error(ctx, "user directory write failed", "error", err)
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// storedScheme is the value written to UserRecord.HashScheme. The sha256
// scheme is written as empty to keep the legacy record layout.
func storedScheme(h cryptox.Hasher) string {
	if h.Scheme() == cryptox.SchemeSHA256 {
		return ""
	}
	return string(h.Scheme())
}

func (s *userService) CreateUser(ctx context.Context, username, email, password string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	if !IsValidEmail(email) {
		return nil, common.NewValidationError(common.MsgInvalidEmail)
	}
	if _, exists := users[email]; exists {
		return nil, common.NewValidationError(common.MsgEmailRegistered)
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, common.NewValidationError(common.MsgUsernameTooShort)
	}
	if !IsPasswordStrong(password) {
		return nil, common.NewValidationError(common.MsgWeakPassword)
	}

	ph, err := s.hasher.Hash(password, "")
	if err != nil {
		return nil, fmt.Errorf("password hashing: %w", err)
	}

	user := &models.UserRecord{
		Username:     username,
		Email:        email,
		PasswordHash: ph.Hash,
		Salt:         ph.Salt,
		HashScheme:   storedScheme(s.hasher),
		CreatedAt:    s.now().UTC(),
		Settings:     models.Settings{models.SettingTheme: models.ThemeLight},
	}
	users[email] = user

	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user created", "email", email)
	return user, nil
}

func (s *userService) VerifyUser(ctx context.Context, email, password string) (*models.UserRecord, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	user, ok := users[email]
	if !ok {
		s.log.Warn(ctx, "login for unknown email", "email", email)
		return nil, common.NewNotFoundError()
	}

	h, err := cryptox.NewHasher(cryptox.Scheme(user.HashScheme))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}

	match, err := cryptox.Verify(h, password, cryptox.PasswordHash{Hash: user.PasswordHash, Salt: user.Salt})
	if err != nil {
		return nil, fmt.Errorf("password hashing: %w", err)
	}
	if !match {
		s.log.Warn(ctx, "password mismatch", "email", email)
		return nil, common.NewInvalidCredentialsError()
	}

	return user, nil
}

func (s *userService) GetUserData(ctx context.Context, email string) (*models.PublicUser, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[email]
	if !ok {
		return nil, nil
	}
	return user.Public(), nil
}

func (s *userService) UpdateUserSettings(ctx context.Context, email string, settings models.Settings) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return false, err
	}
	user, ok := users[email]
	if !ok {
		return false, nil
	}

	if user.Settings == nil {
		user.Settings = models.Settings{}
	}
	for k, v := range settings {
		user.Settings[k] = v
	}

	if err := s.saveUsers(ctx, users); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateUserProfile applies the non-empty fields of upd. A new password is
// hashed with a fresh salt and the configured scheme; its strength is the
// caller's responsibility.
func (s *userService) UpdateUserProfile(ctx context.Context, email string, upd models.ProfileUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return false, err
	}
	user, ok := users[email]
	if !ok {
		return false, common.NewNotFoundError()
	}

	if upd.Username != nil && *upd.Username != "" {
		user.Username = *upd.Username
	}
	if upd.Password != nil && *upd.Password != "" {
		ph, err := s.hasher.Hash(*upd.Password, "")
		if err != nil {
			return false, fmt.Errorf("password hashing: %w", err)
		}
		user.PasswordHash = ph.Hash
		user.Salt = ph.Salt
		user.HashScheme = storedScheme(s.hasher)
	}
	if upd.ProfilePicture != nil && *upd.ProfilePicture != "" {
		user.ProfilePicture = *upd.ProfilePicture
	}

	if err := s.saveUsers(ctx, users); err != nil {
		return false, err
	}

	s.log.Info(ctx, "profile updated", "email", email, "password_changed", upd.Password != nil && *upd.Password != "")
	return true, nil
}

// DeleteAccount removes the record of email, then its task list, then the
// session. The steps are not atomic: if a later step fails the earlier ones
// stay done and the error is returned. Each step is safe to repeat, so a
// failed deletion is finished by deleting the tasks and clearing the session
// again.
func (s *userService) DeleteAccount(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := users[email]; !ok {
		return false, common.NewNotFoundError()
	}

	delete(users, email)
	if err := s.saveUsers(ctx, users); err != nil {
		return false, err
	}

	if err := s.tasks.DeleteUserTasks(ctx, email); err != nil {
		s.log.Error(ctx, "account removed but tasks remain", "email", email, "error", err)
		return false, err
	}

	if err := s.sessions.ClearSession(ctx); err != nil {
		s.log.Error(ctx, "account removed but session remains", "email", email, "error", err)
		return false, err
	}

	s.log.Info(ctx, "account deleted", "email", email)
	return true, nil
}
