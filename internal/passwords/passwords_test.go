package passwords

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

var cheapParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestHasher(t *testing.T) Hasher {
	t.Helper()
	h, err := NewHasher(cheapParams)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func TestHashVerify(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "pw1" {
		t.Fatal("hash must not equal the password")
	}
	if !h.Verify("pw1", hash) {
		t.Fatal("expected password to verify")
	}
	if h.Verify("pw2", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	for _, hash := range []string{"", "plain", "$argon2id$broken", "$2b$garbage"} {
		if h.Verify("pw", hash) {
			t.Fatalf("malformed hash %q verified", hash)
		}
	}
}

func TestVerifyBcrypt(t *testing.T) {
	h := newTestHasher(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !h.Verify("legacy", string(legacy)) {
		t.Fatal("expected bcrypt hash to verify")
	}
	if h.Verify("other", string(legacy)) {
		t.Fatal("expected wrong password to fail against bcrypt hash")
	}
}

func TestVerifyDummy(t *testing.T) {
	h := newTestHasher(t)
	h.VerifyDummy("anything")
}
