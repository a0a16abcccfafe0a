// Package auth provides the credential primitives of the server: the signed
// token codec, password hashing, and one-time secret generation.
package auth

import (
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the set carried by every signed token: the registered claims plus the
// subject's identity. Access, refresh, and verification tokens share this
// shape but are signed with independent secrets.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// GenerateToken signs a HS256 token for the given subject with the given
// secret and validity window. A random jti is included so two tokens minted
// within the same second are still distinct strings.
func GenerateToken(userID, email string, role models.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	jti, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Email:  email,
		Role:   role.String(),
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and the claims (including expiry) and
// returns the embedded claims. Any failure collapses into ErrInvalidToken;
// callers never learn whether the structure, signature, or expiry was at
// fault.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ParseTokenAllowExpired verifies the signature but tolerates an expired exp
// claim. Logout uses it so a recently-expired session can still be revoked.
func ParseTokenAllowExpired(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
