package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ann@example.com", true},
		{"a.b+c@sub.example.co", true},
		{"ann@example", false},
		{"ann example@x.com", false},
		{"@example.com", false},
		{"ann@@example.com", false},
		{"ann@.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsPasswordStrong(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes", "Secur3!ty", true},
		{"exactly eight", "Aa1!aaaa", true},
		{"seven chars", "Aa1!aaa", false},
		{"no upper", "secur3!ty", false},
		{"no lower", "SECUR3!TY", false},
		{"no digit", "Secure!ty", false},
		{"no symbol", "Secur3ity", false},
		{"symbol outside set", "Secur3-ty", false},
		{"quote symbol", `Secur3"ty`, true},
		{"non ascii letters do not count", "ÄäÖö1!xx", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordStrong(tt.password))
		})
	}
}

func TestIsPasswordStrong_EverySymbol(t *testing.T) {
	for _, r := range passwordSymbols {
		assert.True(t, IsPasswordStrong("Abcdef1"+string(r)), "symbol %q", r)
	}
}

func TestPasswordStrength(t *testing.T) {
	assert.Equal(t, StrengthNone, PasswordStrength(""))
	assert.Equal(t, StrengthWeak, PasswordStrength("password"))
	assert.Equal(t, StrengthMedium, PasswordStrength("Secur3!ty"))
	assert.Equal(t, StrengthStrong, PasswordStrength("Secur3!tyLong"))

	assert.Equal(t, "Strong password!", StrengthStrong.Message())
	assert.Empty(t, StrengthNone.Message())
	assert.Contains(t, StrengthWeak.Message(), "8+ characters")
}
