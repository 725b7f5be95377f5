// Package cli implements the interactive terminal client of taskkeeper: a
// small REPL over the credential store covering sign-up, login (password or
// biometric), profile management, preferences and the personal task list.
package cli
