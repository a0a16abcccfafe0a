// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, login, refresh-token rotation,
// and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserSummary is the safe projection of a user record returned to clients.
// It never carries the password hash or either token pair.
type UserSummary struct {
	ID            string
	Email         string
	Name          string
	Role          string
	EmailVerified bool
}

// LoginResult is what a successful Login returns.
type LoginResult struct {
	User   UserSummary
	Tokens TokenPair
}

const minPasswordLength = 6

// SessionService provides the session lifecycle operations:
//   - Register: create an unverified user and send the validation link
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate the refresh token and mint a new pair
//   - Logout: revoke a single refresh token
type SessionService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mail                         mailer.Sender
	logger                       logging.Logger
	accessSecret                 []byte
	refreshSecret                []byte
	verifySecret                 []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	verificationValidityDuration time.Duration
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mail mailer.Sender, logger logging.Logger) *SessionService {
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		mail:                         mail,
		logger:                       logger,
		accessSecret:                 []byte(cfg.AccessSecret),
		refreshSecret:                []byte(cfg.RefreshSecret),
		verifySecret:                 []byte(cfg.VerifySecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		verificationValidityDuration: cfg.VerificationTokenValidityDuration,
	}
}

// NormalizeEmail is the single place that canonicalizes an email address.
// Every write and every lookup goes through it, so two spellings of the same
// address always hit the same row.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func summarize(u *models.User) UserSummary {
	return UserSummary{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role.String(),
		EmailVerified: u.EmailVerified,
	}
}

// Register creates a new unverified user and sends the validation link.
// A duplicate email yields common.ErrorAlreadyExists. Mail delivery is best
// effort: a failed send is logged but does not fail registration.
func (s *SessionService) Register(ctx context.Context, name string, email string, password string) (*UserSummary, error) {
	email = NormalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, common.ErrorBadRequest
	}
	if len(password) < minPasswordLength {
		return nil, common.ErrorBadRequest
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	userID := uuid.NewString()
	verification, err := auth.GenerateToken(userID, email, models.RoleUser, s.verifySecret, s.verificationValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	verificationExpires := time.Now().Add(s.verificationValidityDuration)

	user := &models.User{
		ID:                  userID,
		Email:               email,
		Name:                name,
		PasswordHash:        hash,
		Role:                models.RoleUser,
		VerificationToken:   &verification,
		VerificationExpires: &verificationExpires,
	}

	saved, err := repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}

	if err := s.mail.SendVerificationEmail(ctx, saved.Email, saved.Name, verification); err != nil {
		s.logger.Warn(ctx, "verification email delivery failed", "user_id", saved.ID, "error", err)
	}

	summary := summarize(saved)
	return &summary, nil
}

// Login verifies the credentials and, on success, returns the user summary
// together with a fresh token pair. An unknown email, a wrong password, and
// an unverified address all yield the same common.ErrorUnauthorized, and an
// unknown email still costs one password comparison.
func (s *SessionService) Login(ctx context.Context, email string, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckPassword(password, auth.DummyPasswordDigest)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	if !user.EmailVerified {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: summarize(user), Tokens: *pair}, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair. A token that is expired, forged, or no longer a member
// of the user's set yields common.ErrorUnauthorized; a replayed token cannot
// be rotated twice.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		removed, err := s.repomanager.RefreshTokens(tx).Delete(ctx, user.ID, refreshToken)
		if err != nil {
			return common.ErrorInternal
		}
		if !removed {
			return common.ErrorUnauthorized
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// Logout removes the refresh token from its owner's set. The signature must
// verify, but an already-expired token is still accepted so that users can
// always end a stale session. Logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := auth.ParseTokenAllowExpired(refreshToken, s.refreshSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}

	if _, err := s.repomanager.RefreshTokens(s.db).Delete(ctx, claims.UserID, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// CurrentUser returns the summary for an authenticated user ID.
func (s *SessionService) CurrentUser(ctx context.Context, userID string) (*UserSummary, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	summary := summarize(user)
	return &summary, nil
}

// generateTokenPair mints a signed access/refresh pair and stores the refresh
// token in the user's set through the given DBTX.
func (s *SessionService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, user.Role, s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(user.ID, user.Email, user.Role, s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
