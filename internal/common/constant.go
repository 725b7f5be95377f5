package common

import "time"

// Durable store keys.
const (
	UsersKey            = "secure_users"
	TasksKeyPrefix      = "secure_tasks"
	BiometricKeyPrefix  = "biometric_enabled"
	ThemeKey            = "theme"
	RememberedUserKey   = "rememberedUser"
	BiometricEnabledVal = "true"
)

// Volatile store keys.
const SessionKey = "secure_session"

// SessionTTL is the absolute lifetime of a session from issuance.
const SessionTTL = 24 * time.Hour

// TasksKey returns the durable key holding the task list of email.
func TasksKey(email string) string { return TasksKeyPrefix + "_" + email }

// BiometricKey returns the durable key holding the biometric flag of email.
func BiometricKey(email string) string { return BiometricKeyPrefix + "_" + email }
