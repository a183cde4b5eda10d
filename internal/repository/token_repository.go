package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// TokenRepo manages the refresh_tokens table. Only SHA-256 hashes of the
// raw tokens are stored; the raw value never touches the database.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh saves the hash of a freshly issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES (?, ?, ?)`,
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh looks up the token by hash and returns the owning user ID
// when it is still usable. Revoked and expired tokens fail with
// sql.ErrNoRows so callers treat all three outcomes the same way.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var t model.RefreshToken
	var revoked sql.NullTime
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = ?
		LIMIT 1`,
		tokenHash).Scan(&t.UserID, &t.ExpiresAt, &revoked)
	if err != nil {
		return 0, err
	}
	if revoked.Valid || !t.ExpiresAt.After(time.Now().UTC()) {
		return 0, sql.ErrNoRows
	}
	return t.UserID, nil
}

// RevokeByHash retires a single token. Already revoked rows are untouched
// so the original revocation time survives.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE token_hash = ? AND revoked_at IS NULL`,
		tokenHash)
	return err
}

// RevokeAllForUser retires every live token of a user, the "log out
// everywhere" path.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE user_id = ? AND revoked_at IS NULL`,
		userID)
	return err
}
