package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/securestore"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/dmitrijs2005/taskkeeper/internal/webauthn"
	"github.com/google/uuid"
)

var errSessionExpired = errors.New("session expired, please log in again")

// openBackends is a seam for tests.
var openBackends = securestore.OpenBackends

type App struct {
	config   *config.Config
	store    *securestore.SecureStore
	backends io.Closer
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	email    string
}

// NewApp opens the configured stores and wires the credential store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	hasher, err := cryptox.NewHasher(cryptox.Scheme(c.HashScheme))
	if err != nil {
		return nil, err
	}

	// A fresh id per process keeps a Redis session from outliving the client.
	b, err := openBackends(ctx, c, uuid.NewString())
	if err != nil {
		return nil, err
	}

	a := &App{config: c, backends: b, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout}
	a.store = securestore.New(securestore.Options{
		Durable:       b.Durable,
		Volatile:      b.Volatile,
		Hasher:        hasher,
		Authenticator: a.newAuthenticator(b.Durable),
		SessionTTL:    c.SessionTTL,
		Logger:        log,
	})
	return a, nil
}

// newAuthenticator keeps software credentials in keychain.
func (a *App) newAuthenticator(keychain storage.Store) webauthn.Authenticator {
	if a.config.Biometric != config.BiometricSoftware {
		return webauthn.Unsupported{}
	}
	return webauthn.NewSoftwareAuthenticator(keychain, a.confirmPresence)
}

// confirmPresence stands in for the fingerprint prompt of a platform
// authenticator.
func (a *App) confirmPresence(_ context.Context, prompt string) (bool, error) {
	return getConfirm(a.reader, prompt+". Confirm it's you", a.out)
}

// Run restores a live session, if any, and serves commands until exit or
// end of input.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to TaskKeeper (type 'help' for commands)")

	sess, err := a.store.ValidateSession(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	} else if sess != nil {
		a.email = sess.Email
		printlnFn("Welcome back,", sess.Email)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() error {
	if a.backends == nil {
		return nil
	}
	err := a.backends.Close()
	a.backends = nil
	return err
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// currentUser re-checks the session before a protected command, so an
// expired session logs the client out.
func (a *App) currentUser(ctx context.Context) (string, error) {
	sess, err := a.store.ValidateSession(ctx)
	if err != nil {
		return "", err
	}
	if sess == nil || sess.Email != a.email {
		a.email = ""
		return "", errSessionExpired
	}
	return sess.Email, nil
}

func (a *App) durableString(ctx context.Context, key string) string {
	v, ok, err := a.store.Durable().Get(ctx, key)
	if err != nil {
		a.log.Warn(ctx, "preference read failed", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(v)
}
