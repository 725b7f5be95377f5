package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRecord_PublicStripsCredentials(t *testing.T) {
	u := &UserRecord{
		Username:     "ann",
		Email:        "ann@example.com",
		PasswordHash: "deadbeef",
		Salt:         "cafe",
		HashScheme:   "argon2id",
		Settings:     Settings{SettingTheme: ThemeLight},
	}

	p := u.Public()
	b, err := json.Marshal(p)
	require.NoError(t, err)

	assert.NotContains(t, string(b), "passwordHash")
	assert.NotContains(t, string(b), "salt")
	assert.NotContains(t, string(b), "deadbeef")

	p.Settings[SettingTheme] = ThemeDark
	assert.Equal(t, ThemeLight, u.Settings[SettingTheme], "public copy must not alias settings")
}

func TestUserRecord_StoredFieldNames(t *testing.T) {
	b, err := json.Marshal(UserRecord{Email: "a@b.co", PasswordHash: "h", Salt: "s"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, k := range []string{"username", "email", "passwordHash", "salt", "createdAt", "settings"} {
		assert.Contains(t, raw, k)
	}
	assert.NotContains(t, raw, "hashScheme", "empty scheme is omitted for legacy layout")
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now}

	assert.False(t, s.Expired(now), "expiry is strictly after ExpiresAt")
	assert.True(t, s.Expired(now.Add(time.Millisecond)))
	assert.False(t, s.Expired(now.Add(-time.Hour)))
}

func TestPriority_Rank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Less(t, PriorityLow.Rank(), Priority("urgent").Rank())
}
