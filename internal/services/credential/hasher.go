package credential

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Scheme tags prefixed to stored credentials
const (
	SchemeBcrypt = "bcrypt"
	SchemePBKDF2 = "pbkdf2-sha512"
	SchemePlain  = "plain"
)

// Legacy PBKDF2 parameters
const (
	pbkdf2Iterations = 1000
	pbkdf2KeyLength  = 64
)

var (
	// ErrEmptyPassword is returned when hashing an empty password
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrMalformed is returned for a credential that names a scheme but cannot be parsed
	ErrMalformed = errors.New("malformed credential")
)

// Hasher creates and verifies participant credentials
type Hasher struct {
	cost int
}

// New creates a Hasher. A zero cost selects bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a new scheme-tagged credential for password
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return SchemeBcrypt + ":" + string(hash), nil
}

// Verify reports whether password matches the stored credential.
//
// Tagged credentials ("bcrypt:", "pbkdf2-sha512:", "plain:") are checked with
// their scheme. Untagged values are inferred: a parseable bcrypt hash, a
// "salt:hash" PBKDF2 pair, or otherwise a plaintext password.
func (h *Hasher) Verify(stored, password string) (bool, error) {
	scheme, rest, tagged := strings.Cut(stored, ":")
	if tagged {
		switch scheme {
		case SchemeBcrypt:
			return verifyBcrypt(rest, password)
		case SchemePBKDF2:
			salt, hash, ok := strings.Cut(rest, ":")
			if !ok {
				return false, ErrMalformed
			}
			return verifyPBKDF2(salt, hash, password)
		case SchemePlain:
			return equal(rest, password), nil
		}
	}

	switch {
	case tagged:
		return verifyPBKDF2(scheme, rest, password)
	case isBcryptHash(stored):
		return verifyBcrypt(stored, password)
	default:
		return equal(stored, password), nil
	}
}

// Scheme returns the scheme a credential would be verified with
func Scheme(stored string) string {
	scheme, _, tagged := strings.Cut(stored, ":")
	switch {
	case tagged && (scheme == SchemeBcrypt || scheme == SchemePBKDF2 || scheme == SchemePlain):
		return scheme
	case tagged:
		return SchemePBKDF2
	case isBcryptHash(stored):
		return SchemeBcrypt
	default:
		return SchemePlain
	}
}

// HashPBKDF2 produces a credential in the legacy PBKDF2 format. The salt is
// used as given, not decoded.
func HashPBKDF2(salt, password string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha512.New)
	return SchemePBKDF2 + ":" + salt + ":" + hex.EncodeToString(key)
}

// isBcryptHash reports whether an untagged value parses as a bcrypt hash.
// Legacy plaintext passwords may also start with "$2".
func isBcryptHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func verifyBcrypt(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(ErrMalformed, err)
	}
}

func verifyPBKDF2(salt, hash, password string) (bool, error) {
	want, err := hex.DecodeString(hash)
	if err != nil || len(want) != pbkdf2KeyLength {
		return false, ErrMalformed
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
