// Package services implements the credential store on top of two
// storage.Store instances: a durable one for user records, task lists and
// biometric flags, and a volatile one for the session.
//
// Services:
//   - UserService       account creation, login check, profile and settings
//     changes, account deletion
//   - SessionManager    one session per client, absolute TTL, lazy expiry
//   - TaskService       per-user task list, opaque to the rest of the core
//   - BiometricService  platform authenticator enrollment flag and login
//   - AvatarService     initials avatar and uploaded picture processing
//
// Every failure a user can cause is a *common.Error whose kind matches one
// of the common.Err* sentinels. Anything else is an infrastructure error
// from the underlying store.
package services
