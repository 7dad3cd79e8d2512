// Package passwords hashes and verifies user passwords.
//
// New hashes are argon2id. Verification also understands bcrypt hashes so
// accounts created by the bcrypt-based predecessor keep working.
package passwords

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

type Hasher interface {
	// Hash returns an encoded hash that embeds its own salt and cost.
	Hash(password string) (string, error)

	// Verify reports whether plain matches hash. A malformed hash
	// does not match anything.
	Verify(plain, hash string) bool

	// VerifyDummy runs a verification against a fixed hash and discards
	// the result, so that a lookup miss costs as much as a mismatch.
	VerifyDummy(plain string)
}

type argon2idHasher struct {
	params *argon2id.Params
	dummy  string
}

// NewHasher returns a Hasher using params, or argon2id.DefaultParams when
// params is nil.
func NewHasher(params *argon2id.Params) (Hasher, error) {
	if params == nil {
		params = argon2id.DefaultParams
	}

	dummy, err := argon2id.CreateHash("dummy-password", params)
	if err != nil {
		return nil, err
	}
	return &argon2idHasher{
		params: params,
		dummy:  dummy,
	}, nil
}

func (h *argon2idHasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password, h.params)
}

func (h *argon2idHasher) Verify(plain, hash string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}

	match, err := argon2id.ComparePasswordAndHash(plain, hash)
	if err != nil {
		return false
	}
	return match
}

func (h *argon2idHasher) VerifyDummy(plain string) {
	_ = h.Verify(plain, h.dummy)
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
