// Package cryptox holds the cryptographic primitives of the credential
// store: opaque session tokens, random salts and salted password digests.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// TokenSize is the number of random bytes in a session token.
	TokenSize = 32
	// SaltSize is the number of random bytes in a password salt.
	SaltSize = 16
)

// Scheme names a password digest format. The empty scheme is the legacy
// sha256 one so that records written before schemes existed still verify.
type Scheme string

const (
	SchemeSHA256   Scheme = "sha256"
	SchemeArgon2id Scheme = "argon2id"
)

// argon2id parameters (RFC 9106 second recommended option, lower memory).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// PasswordHash pairs a hex digest with the hex salt that produced it.
// The two are always stored and replaced together.
type PasswordHash struct {
	Hash string
	Salt string
}

// GenerateToken returns TokenSize random bytes as lowercase hex.
func GenerateToken() (string, error) {
	return common.MakeRandHexString(TokenSize)
}

// GenerateSalt returns SaltSize random bytes as lowercase hex.
func GenerateSalt() (string, error) {
	return common.MakeRandHexString(SaltSize)
}

// HashPassword computes sha256(password || salt) and returns it hex-encoded
// together with the salt. An empty salt means "generate a fresh one".
//
// Example:
//
//	ph, err := HashPassword("Secur3!ty", "")
//	if err != nil {
//	    return err
//	}
//	again, _ := HashPassword("Secur3!ty", ph.Salt)
//	// again.Hash == ph.Hash
func HashPassword(password, salt string) (PasswordHash, error) {
	return sha256Hasher{}.Hash(password, salt)
}

// Hasher produces salted password digests of a single scheme.
type Hasher interface {
	Scheme() Scheme
	Hash(password, salt string) (PasswordHash, error)
}

// NewHasher returns the Hasher for scheme. The empty scheme maps to sha256.
func NewHasher(scheme Scheme) (Hasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return sha256Hasher{}, nil
	case SchemeArgon2id:
		return argon2Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
}

// Verify recomputes the digest of password with the stored salt and
// compares it to the stored hash in constant time.
func Verify(h Hasher, password string, stored PasswordHash) (bool, error) {
	candidate, err := h.Hash(password, stored.Salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate.Hash), []byte(stored.Hash)) == 1, nil
}

func ensureSalt(salt string) (string, error) {
	if salt != "" {
		return salt, nil
	}
	s, err := GenerateSalt()
	if err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}
	return s, nil
}

type sha256Hasher struct{}

func (sha256Hasher) Scheme() Scheme { return SchemeSHA256 }

func (sha256Hasher) Hash(password, salt string) (PasswordHash, error) {
	salt, err := ensureSalt(salt)
	if err != nil {
		return PasswordHash{}, err
	}
	sum := sha256.Sum256([]byte(password + salt))
	return PasswordHash{Hash: hex.EncodeToString(sum[:]), Salt: salt}, nil
}

type argon2Hasher struct{}

func (argon2Hasher) Scheme() Scheme { return SchemeArgon2id }

func (argon2Hasher) Hash(password, salt string) (PasswordHash, error) {
	salt, err := ensureSalt(salt)
	if err != nil {
		return PasswordHash{}, err
	}
	key := argon2.IDKey([]byte(password), []byte(salt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return PasswordHash{Hash: hex.EncodeToString(key), Salt: salt}, nil
}
