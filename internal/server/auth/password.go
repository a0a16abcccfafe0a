package auth

import "golang.org/x/crypto/bcrypt"

// DummyPasswordDigest is a syntactically valid bcrypt digest that no real
// password hashes to. Login verifies against it when the account does not
// exist, so the absent-account and wrong-password paths take comparable time.
// This is NOT a credential.
const DummyPasswordDigest = "$2a$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// HashPassword produces a salted bcrypt digest of the plaintext. bcrypt
// embeds a fresh random salt per call.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// A malformed digest compares as false, never as an error.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
