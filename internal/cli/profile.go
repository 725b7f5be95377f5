package cli

import (
	"context"
	"errors"
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/services"
)

func (a *App) Profile(ctx context.Context) error {
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	user, err := a.store.GetUserData(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return common.NewNotFoundError()
	}

	theme := user.Settings[models.SettingTheme]
	if theme == "" {
		theme = models.ThemeLight
	}
	picture := "initials"
	if user.ProfilePicture != "" {
		picture = "custom"
	}
	biometric, err := a.store.IsBiometricEnabled(ctx, email)
	if err != nil {
		return err
	}

	printlnFn("Username: ", user.Username)
	printlnFn("Email:    ", user.Email)
	printlnFn("Joined:   ", user.CreatedAt.Local().Format(time.DateOnly))
	printlnFn("Theme:    ", theme)
	printlnFn("Picture:  ", picture)
	printlnFn("Biometric:", onOff(biometric))
	return nil
}

func (a *App) Rename(ctx context.Context) error {
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter new username", a.out)
	if err != nil {
		return err
	}
	if _, err := a.store.UpdateUserProfile(ctx, email, models.ProfileUpdate{Username: &username}); err != nil {
		return err
	}
	printlnFn("Profile updated")
	return nil
}

// ChangePassword asks for the current password before accepting a new one.
// The new password must pass the same strength rule as at sign-up.
func (a *App) ChangePassword(ctx context.Context) error {
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	current, err := getPassword(a.out, "Enter current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)
	if _, err := a.store.VerifyUser(ctx, email, string(current)); err != nil {
		return err
	}

	next, err := getPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	pw := string(next)
	if !a.store.IsPasswordStrong(pw) {
		return common.NewValidationError(common.MsgWeakPassword)
	}
	printlnFn(a.store.PasswordStrength(pw).Message())

	if _, err := a.store.UpdateUserProfile(ctx, email, models.ProfileUpdate{Password: &pw}); err != nil {
		return err
	}
	printlnFn("Password changed")
	return nil
}

var errAvatarUsage = errors.New("usage: avatar <file>|initials [-blur]")

// Avatar sets the profile picture from an image file, or regenerates the
// initials avatar with "avatar initials". -blur blurs the picture.
func (a *App) Avatar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("avatar", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	blur := fs.Bool("blur", false, "blur the picture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errAvatarUsage
	}
	// flags may also follow the target
	target := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errAvatarUsage
	}

	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	var picture string
	if target == "initials" {
		user, err := a.store.GetUserData(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			return common.NewNotFoundError()
		}
		picture, err = a.store.GenerateInitialsAvatar(user.Username)
		if err != nil {
			return err
		}
	} else {
		data, err := filex.ReadFileLimited(target, services.MaxPictureBytes)
		if errors.Is(err, filex.ErrTooLarge) {
			return common.NewValidationError(common.MsgPictureTooLarge)
		}
		if err != nil {
			return err
		}
		picture, err = a.store.ProcessProfilePicture(ctx, data, services.PictureOptions{BlurFace: *blur})
		if err != nil {
			return err
		}
	}

	if _, err := a.store.UpdateUserProfile(ctx, email, models.ProfileUpdate{ProfilePicture: &picture}); err != nil {
		return err
	}
	printlnFn("Profile picture updated")
	return nil
}

// Biometric shows the biometric login state, or turns it on or off.
func (a *App) Biometric(ctx context.Context, args []string) error {
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		enabled, err := a.store.IsBiometricEnabled(ctx, email)
		if err != nil {
			return err
		}
		printlnFn("Biometric login:", onOff(enabled))
		return nil
	}

	switch args[0] {
	case "on":
		if !a.store.InitWebAuthn(ctx) {
			printlnFn(common.MsgBiometricNotAvail)
			return nil
		}
		if _, err := a.store.EnableBiometric(ctx, email); err != nil {
			return err
		}
		printlnFn("Biometric login enabled successfully!")
	case "off":
		if err := a.store.Durable().Delete(ctx, common.BiometricKey(email)); err != nil {
			return err
		}
		printlnFn("Biometric login disabled")
	default:
		return errors.New("usage: biometric [on|off]")
	}
	return nil
}

// DeleteAccount removes the account after confirmation and logs out. The
// device forgets the email and the biometric flag as well.
func (a *App) DeleteAccount(ctx context.Context) error {
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	ok, err := getConfirm(a.reader, "Delete your account and all tasks? This cannot be undone.", a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled")
		return nil
	}

	if _, err := a.store.DeleteAccount(ctx, email); err != nil {
		return err
	}
	a.email = ""

	durable := a.store.Durable()
	if err := durable.Delete(ctx, common.BiometricKey(email)); err != nil {
		a.log.Warn(ctx, "biometric flag not removed", "error", err)
	}
	if a.durableString(ctx, common.RememberedUserKey) == email {
		if err := durable.Delete(ctx, common.RememberedUserKey); err != nil {
			a.log.Warn(ctx, "remembered user not removed", "error", err)
		}
	}

	printlnFn("Account deleted")
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
