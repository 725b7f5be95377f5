package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/services"
)

// Register prompts for a username, an email and a password, creates the
// account and logs the new user in. The remembered email is forgotten, as
// an automatic login never opts into "remember me".
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if msg := services.PasswordStrength(string(password)).Message(); msg != "" {
		printlnFn(msg)
	}

	if _, err := a.store.CreateUser(ctx, username, email, string(password)); err != nil {
		return err
	}
	return a.startSession(ctx, email, string(password), false)
}

// Login prompts for credentials and opens a session. When an email was
// remembered it is offered as the default and "remember me" starts checked.
func (a *App) Login(ctx context.Context) error {
	remembered := a.durableString(ctx, common.RememberedUserKey)

	prompt := "Enter email"
	if remembered != "" {
		prompt = fmt.Sprintf("Enter email [%s]", remembered)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = remembered
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getConfirm(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}
	return a.startSession(ctx, email, string(password), remember)
}

func (a *App) startSession(ctx context.Context, email, password string, remember bool) error {
	user, err := a.store.VerifyUser(ctx, email, password)
	if err != nil {
		return err
	}
	if _, err := a.store.CreateSession(ctx, email); err != nil {
		return err
	}

	durable := a.store.Durable()
	if remember {
		err = durable.Set(ctx, common.RememberedUserKey, []byte(email))
	} else {
		err = durable.Delete(ctx, common.RememberedUserKey)
	}
	if err != nil {
		a.log.Warn(ctx, "remembered user not updated", "error", err)
	}

	a.email = email
	a.applyUserTheme(ctx, user.Settings)
	printlnFn(fmt.Sprintf("Welcome, %s!", user.Username))
	return nil
}

// applyUserTheme copies the account's theme into the device preference.
func (a *App) applyUserTheme(ctx context.Context, settings models.Settings) {
	theme := settings[models.SettingTheme]
	if theme == "" {
		return
	}
	if err := a.store.Durable().Set(ctx, common.ThemeKey, []byte(theme)); err != nil {
		a.log.Warn(ctx, "theme not saved", "error", err)
	}
}

// BiometricLogin logs in with the platform authenticator instead of a
// password, for accounts that enabled it.
func (a *App) BiometricLogin(ctx context.Context) error {
	remembered := a.durableString(ctx, common.RememberedUserKey)

	prompt := "Enter email"
	if remembered != "" {
		prompt = fmt.Sprintf("Enter email [%s]", remembered)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = remembered
	}

	enabled, err := a.store.IsBiometricEnabled(ctx, email)
	if err != nil {
		return err
	}
	if !enabled {
		printlnFn("Biometric login is not enabled for", email)
		return nil
	}

	if !a.store.VerifyBiometric(ctx, email) {
		printlnFn("Biometric login failed")
		return nil
	}

	a.email = email
	if user, err := a.store.GetUserData(ctx, email); err == nil && user != nil {
		a.applyUserTheme(ctx, user.Settings)
	}
	printlnFn("Welcome,", email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.store.ClearSession(ctx); err != nil {
		return err
	}
	a.email = ""
	printlnFn("Logged out")
	return nil
}

// Theme shows or sets the light/dark preference. It is kept on the device
// and, for a logged-in user, mirrored into the account settings.
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		theme := a.durableString(ctx, common.ThemeKey)
		if theme == "" {
			theme = models.ThemeLight
		}
		printlnFn("Theme:", theme)
		return nil
	}

	theme := args[0]
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("unknown theme %q, use %s or %s", theme, models.ThemeLight, models.ThemeDark)
	}
	if err := a.store.Durable().Set(ctx, common.ThemeKey, []byte(theme)); err != nil {
		return err
	}

	if a.isLoggedIn() {
		email, err := a.currentUser(ctx)
		if err != nil {
			return err
		}
		if _, err := a.store.UpdateUserSettings(ctx, email, models.Settings{models.SettingTheme: theme}); err != nil {
			return err
		}
	}
	printlnFn("Theme:", theme)
	return nil
}
