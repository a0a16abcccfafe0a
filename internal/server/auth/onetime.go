package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// oneTimeSecretBytes is the entropy of a password-reset secret: 32 random
// bytes (256 bits), hex-encoded before it is mailed to the user.
const oneTimeSecretBytes = 32

// NewOneTimeSecret returns a fresh high-entropy secret together with its
// storable digest. The plaintext secret goes into the email link; only the
// digest is ever persisted.
func NewOneTimeSecret() (secret string, digest string, err error) {
	secret, err = common.MakeRandHexString(oneTimeSecretBytes)
	if err != nil {
		return "", "", err
	}
	return secret, DigestSecret(secret), nil
}

// DigestSecret computes the one-way digest of a presented secret. The same
// function runs at request time and at completion time, so lookups by digest
// match exactly.
func DigestSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
