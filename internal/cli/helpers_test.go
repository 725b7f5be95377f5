package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/securestore"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/dmitrijs2005/taskkeeper/internal/webauthn"
)

// script replaces the interactive input seams with queued answers and
// records everything printed.
type script struct {
	texts     []string
	passwords []string
	confirms  []bool
	printed   []string
}

func newScript(t *testing.T) *script {
	t.Helper()
	s := &script{}

	origST, origGP, origGC, origPrint := getSimpleText, getPassword, getConfirm, printlnFn
	t.Cleanup(func() {
		getSimpleText, getPassword, getConfirm, printlnFn = origST, origGP, origGC, origPrint
	})

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(s.texts) == 0 {
			return "", fmt.Errorf("unexpected prompt %q", prompt)
		}
		v := s.texts[0]
		s.texts = s.texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, prompt string) ([]byte, error) {
		if len(s.passwords) == 0 {
			return nil, fmt.Errorf("unexpected password prompt %q", prompt)
		}
		v := s.passwords[0]
		s.passwords = s.passwords[1:]
		return []byte(v), nil
	}
	getConfirm = func(_ *bufio.Reader, prompt string, _ io.Writer) (bool, error) {
		if len(s.confirms) == 0 {
			return false, fmt.Errorf("unexpected confirmation %q", prompt)
		}
		v := s.confirms[0]
		s.confirms = s.confirms[1:]
		return v, nil
	}
	printlnFn = func(a ...any) (int, error) {
		s.printed = append(s.printed, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	return s
}

func (s *script) text(v ...string) *script     { s.texts = append(s.texts, v...); return s }
func (s *script) password(v ...string) *script { s.passwords = append(s.passwords, v...); return s }
func (s *script) confirm(v ...bool) *script    { s.confirms = append(s.confirms, v...); return s }

func (s *script) output() string { return strings.Join(s.printed, "\n") }

type testApp struct {
	*App
	durable  *storage.MemoryStore
	volatile *storage.MemoryStore
	now      time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Biometric = config.BiometricSoftware

	ta := &testApp{
		durable:  storage.NewMemoryStore(),
		volatile: storage.NewMemoryStore(),
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	ta.App = &App{
		config: cfg,
		log:    logging.NewDiscard(),
		reader: bufio.NewReader(strings.NewReader("")),
		out:    io.Discard,
	}
	ta.store = securestore.New(securestore.Options{
		Durable:       ta.durable,
		Volatile:      ta.volatile,
		Authenticator: webauthn.NewSoftwareAuthenticator(storage.NewMemoryStore(), nil),
		Now:           func() time.Time { return ta.now },
	})
	return ta
}

func newStoreWithAuthenticator(ta *testApp, auth webauthn.Authenticator) *securestore.SecureStore {
	return securestore.New(securestore.Options{
		Durable:       ta.durable,
		Volatile:      ta.volatile,
		Authenticator: auth,
		Now:           func() time.Time { return ta.now },
	})
}
