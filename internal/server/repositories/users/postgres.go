// Package users provides a PostgreSQL-backed repository for user records.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, email_verified,
		verification_token, verification_expires_at,
		password_reset_digest, password_reset_expires_at,
		created_at, updated_at`

// scanUser reads one user row. The role column is stored as text and mapped
// back to models.Role here, at the adapter boundary.
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role string

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &role, &user.EmailVerified,
		&user.VerificationToken, &user.VerificationExpires,
		&user.PasswordResetDigest, &user.PasswordResetExpires,
		&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role, err = models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Save upserts the whole user record keyed by ID and returns the stored row.
// A unique violation on the email column is reported as common.ErrorAlreadyExists.
func (r *PostgresRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, email, name, password_hash, role, email_verified,
             verification_token, verification_expires_at,
             password_reset_digest, password_reset_expires_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         ON CONFLICT (id) DO UPDATE SET
             email = EXCLUDED.email,
             name = EXCLUDED.name,
             password_hash = EXCLUDED.password_hash,
             role = EXCLUDED.role,
             email_verified = EXCLUDED.email_verified,
             verification_token = EXCLUDED.verification_token,
             verification_expires_at = EXCLUDED.verification_expires_at,
             password_reset_digest = EXCLUDED.password_reset_digest,
             password_reset_expires_at = EXCLUDED.password_reset_expires_at,
             updated_at = now()
         RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role.String(), user.EmailVerified,
		user.VerificationToken, user.VerificationExpires,
		user.PasswordResetDigest, user.PasswordResetExpires)

	saved, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, err
	}

	return saved, nil
}

// FindByID returns the user with the given ID, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE id = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail returns the user with the given email, or common.ErrorNotFound.
// Callers pass the already-normalized form; the column is matched verbatim.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE email = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByPasswordResetDigest returns the user whose pending password-reset
// digest matches, or common.ErrorNotFound.
func (r *PostgresRepository) FindByPasswordResetDigest(ctx context.Context, digest string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE password_reset_digest = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, digest))
}
