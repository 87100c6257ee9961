package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pocketledger/internal/models"
)

// CreateAccount inserts an account and its initial categories in one
// transaction. It fails with models.ErrDuplicateUsername if the username is taken.
func (db *DB) CreateAccount(ctx context.Context, username, passwordHash string, currency models.Currency, categories []string) (*models.Account, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE username = ?", username).Scan(&exists)
		if err == nil {
			return models.ErrDuplicateUsername
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check username: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (username, password_hash, currency) VALUES (?, ?, ?)",
			username, passwordHash, string(currency),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrDuplicateUsername
			}
			return fmt.Errorf("insert account: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}

		for _, name := range categories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO categories (name, account_id) VALUES (?, ?)", name, id,
			); err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.GetAccountByID(ctx, id)
}

// GetAccountByID retrieves an account by ID.
func (db *DB) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, username, password_hash, currency, created_at FROM accounts WHERE id = ?",
		id,
	)
	return scanAccount(row)
}

// GetAccountByUsername retrieves an account by username.
func (db *DB) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, username, password_hash, currency, created_at FROM accounts WHERE username = ?",
		username,
	)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var currency string
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &currency, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	a.Currency = models.Currency(currency)
	return &a, nil
}

// UpdateAccountCurrency changes the display currency of an account.
func (db *DB) UpdateAccountCurrency(ctx context.Context, id int64, currency models.Currency) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE accounts SET currency = ? WHERE id = ?", string(currency), id)
		if err != nil {
			return fmt.Errorf("update currency: %w", err)
		}
		return requireAffected(result)
	})
}

// AccountCount returns the number of accounts in the database.
func (db *DB) AccountCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
