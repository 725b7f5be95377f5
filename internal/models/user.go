// Package models defines the records persisted by the credential store.
// JSON names match the stored layout so existing data stays readable.
package models

import "time"

// Settings holds per-user preferences. Updates are merged key by key.
type Settings map[string]string

const (
	SettingTheme = "theme"
	ThemeLight   = "light"
	ThemeDark    = "dark"
)

// UserRecord is one entry of the user directory, keyed by Email.
// PasswordHash and Salt are always written together.
type UserRecord struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"passwordHash"`
	Salt           string    `json:"salt"`
	HashScheme     string    `json:"hashScheme,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Settings       Settings  `json:"settings"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

// PublicUser is a UserRecord without credential material.
type PublicUser struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"createdAt"`
	Settings       Settings  `json:"settings"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

// Public strips PasswordHash, Salt and HashScheme.
func (u *UserRecord) Public() *PublicUser {
	settings := make(Settings, len(u.Settings))
	for k, v := range u.Settings {
		settings[k] = v
	}
	return &PublicUser{
		Username:       u.Username,
		Email:          u.Email,
		CreatedAt:      u.CreatedAt,
		Settings:       settings,
		ProfilePicture: u.ProfilePicture,
	}
}

// ProfileUpdate carries the optional fields of a profile change. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Username       *string
	Password       *string
	ProfilePicture *string
}
