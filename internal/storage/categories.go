package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pocketledger/internal/models"
)

// ListCategories returns an account's categories in creation order.
func (db *DB) ListCategories(ctx context.Context, accountID int64) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, account_id FROM categories WHERE account_id = ? ORDER BY id",
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.AccountID); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category owned by accountID.
func (db *DB) GetCategory(ctx context.Context, accountID, id int64) (*models.Category, error) {
	var c models.Category
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, name, account_id FROM categories WHERE id = ? AND account_id = ?",
		id, accountID,
	).Scan(&c.ID, &c.Name, &c.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory adds a category to an account. Names are unique per account.
func (db *DB) CreateCategory(ctx context.Context, accountID int64, name string) (*models.Category, error) {
	c := &models.Category{Name: name, AccountID: accountID}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM categories WHERE account_id = ? AND name = ?", accountID, name,
		).Scan(&exists)
		if err == nil {
			return models.ErrDuplicateCategory
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check category: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			"INSERT INTO categories (name, account_id) VALUES (?, ?)", name, accountID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrDuplicateCategory
			}
			return fmt.Errorf("insert category: %w", err)
		}
		c.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category owned by accountID. Deletion is refused
// with models.ErrCategoryInUse while any expense references the category.
func (db *DB) DeleteCategory(ctx context.Context, accountID, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM categories WHERE id = ? AND account_id = ?", id, accountID,
		).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find category: %w", err)
		}

		var refs int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM expenses WHERE category_id = ?", id,
		).Scan(&refs); err != nil {
			return fmt.Errorf("count category expenses: %w", err)
		}
		if refs > 0 {
			return models.ErrCategoryInUse
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
