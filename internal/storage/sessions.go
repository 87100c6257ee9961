package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pocketledger/internal/models"
)

// CreateSession creates a new session for an account.
func (db *DB) CreateSession(ctx context.Context, token string, accountID int64, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO sessions (token, account_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		token, accountID, expiresAt.UnixMilli(), time.Now().UnixMilli(),
	)
	return err
}

// ValidateSession returns the unexpired session for token together with its
// account. Unknown or expired tokens yield models.ErrUnauthenticated.
func (db *DB) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT a.id, a.username, a.password_hash, a.currency, a.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN accounts a ON s.account_id = a.id
		WHERE s.token = ? AND s.expires_at > ?
	`, token, time.Now().UnixMilli())

	var a models.Account
	var currency string
	var lastActivity, expiresAt int64
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &currency, &a.CreatedAt, &lastActivity, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUnauthenticated
		}
		return nil, err
	}
	a.Currency = models.Currency(currency)

	return &models.Session{
		Token:        token,
		Account:      &a,
		LastActivity: time.UnixMilli(lastActivity),
		ExpiresAt:    time.UnixMilli(expiresAt),
	}, nil
}

// RenewSession updates the last activity and expiry of a session.
func (db *DB) RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		time.Now().UnixMilli(), newExpiresAt.UnixMilli(), token,
	)
	return err
}

// DeleteSession removes a session by token. Unknown tokens are not an error.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions and returns how many went.
func (db *DB) CleanExpiredSessions(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
