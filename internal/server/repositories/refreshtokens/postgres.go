// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh tokens used in the session lifecycle.
package refreshtokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
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

// Create inserts a new refresh token for userID with an expiry time of now+validity.
func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Delete removes the token from the user's set in a single statement and
// reports whether a row was actually deleted. Concurrent calls for the same
// token cannot both observe a deletion.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, token string) (bool, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1 AND token = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

// DeleteAllForUser revokes every refresh token the user holds.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
