package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	digest, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Fatalf("not a bcrypt digest: %q", digest)
	}

	if !CheckPassword("Secret123", digest) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword("wrong", digest) {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if a == b {
		t.Fatalf("two digests of the same password must differ (random salt)")
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest must compare as false")
	}
}

func TestDummyPasswordDigest_NeverMatches(t *testing.T) {
	for _, pw := range []string{"", "password", "Secret123"} {
		if CheckPassword(pw, DummyPasswordDigest) {
			t.Fatalf("dummy digest matched %q", pw)
		}
	}
}
