package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// PasswordResetRequestedMessage is the only acknowledgement a reset request
// ever produces. Known and unknown addresses get the identical bytes, so the
// response cannot be used to probe which emails are registered.
const PasswordResetRequestedMessage = "If that email address is registered, a reset message has been sent"

// ProofService handles the out-of-band proofs: password reset by emailed
// one-time secret, and email-address validation by emailed link.
type ProofService struct {
	db                            *sql.DB
	repomanager                   repomanager.RepositoryManager
	mail                          mailer.Sender
	logger                        logging.Logger
	verifySecret                  []byte
	passwordResetValidityDuration time.Duration
}

// NewProofService constructs a ProofService using repositories and server config.
func NewProofService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mail mailer.Sender, logger logging.Logger) *ProofService {
	return &ProofService{
		db:                            db,
		repomanager:                   m,
		mail:                          mail,
		logger:                        logger,
		verifySecret:                  []byte(cfg.VerifySecret),
		passwordResetValidityDuration: cfg.PasswordResetValidityDuration,
	}
}

// RequestPasswordReset starts a reset flow for the given address and returns
// PasswordResetRequestedMessage whether or not the address is registered.
// For a registered address it stores the digest of a fresh one-time secret
// (replacing any earlier pending reset) and emails the secret itself; the
// plaintext secret is never persisted.
func (s *ProofService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", common.ErrorBadRequest
	}

	// Generated before the lookup so both branches pay the same cost.
	secret, digest, err := auth.NewOneTimeSecret()
	if err != nil {
		return "", common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return PasswordResetRequestedMessage, nil
		}
		return "", common.ErrorInternal
	}

	expires := time.Now().Add(s.passwordResetValidityDuration)
	user.PasswordResetDigest = &digest
	user.PasswordResetExpires = &expires

	if _, err := repo.Save(ctx, user); err != nil {
		return "", common.ErrorInternal
	}

	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, user.Name, secret); err != nil {
		s.logger.Warn(ctx, "password reset email delivery failed", "user_id", user.ID, "error", err)
	}

	return PasswordResetRequestedMessage, nil
}

// CompletePasswordReset consumes a one-time reset secret and installs the new
// password. The secret is matched by digest; an unknown, expired, or already
// consumed secret yields common.ErrorBadRequest. On success the pending pair
// is cleared and every refresh token the user holds is revoked, all in one
// transaction.
func (s *ProofService) CompletePasswordReset(ctx context.Context, secret string, newPassword string) error {
	if secret == "" || len(newPassword) < minPasswordLength {
		return common.ErrorBadRequest
	}

	user, err := s.repomanager.Users(s.db).FindByPasswordResetDigest(ctx, auth.DigestSecret(secret))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorBadRequest
		}
		return common.ErrorInternal
	}
	if user.PasswordResetExpires == nil || user.PasswordResetExpires.Before(time.Now()) {
		return common.ErrorBadRequest
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	user.PasswordHash = hash
	user.PasswordResetDigest = nil
	user.PasswordResetExpires = nil

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Save(ctx, user); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteAllForUser(ctx, user.ID)
	}); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset completed", "user_id", user.ID)
	return nil
}

// ValidateEmail consumes a verification token and marks the address verified.
// The call is idempotent: the pending token is cleared on first success, and
// a repeat with the same token still succeeds because the token itself proves
// which already-verified user it belonged to. A forged or expired token
// yields common.ErrorBadRequest.
func (s *ProofService) ValidateEmail(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, s.verifySecret)
	if err != nil {
		return common.ErrorBadRequest
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorBadRequest
		}
		return common.ErrorInternal
	}

	if user.EmailVerified {
		return nil
	}

	if user.VerificationToken == nil || *user.VerificationToken != token {
		return common.ErrorBadRequest
	}
	if user.VerificationExpires == nil || user.VerificationExpires.Before(time.Now()) {
		return common.ErrorBadRequest
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	user.VerificationExpires = nil

	if _, err := repo.Save(ctx, user); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return nil
}
