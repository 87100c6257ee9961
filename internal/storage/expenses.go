package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pocketledger/internal/models"
)

const expenseColumns = `
	SELECT e.id, e.account_id, e.category_id, c.name, e.amount, e.description, e.spent_on
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(s rowScanner) (*models.Expense, error) {
	var e models.Expense
	var spentOn string
	if err := s.Scan(&e.ID, &e.AccountID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.Description, &spentOn); err != nil {
		return nil, err
	}
	date, err := time.Parse(models.DateLayout, spentOn)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", spentOn, err)
	}
	e.Date = date
	return &e, nil
}

// ListExpenses retrieves an account's expenses ordered by date descending.
// Expenses on the same date keep the newest first.
func (db *DB) ListExpenses(ctx context.Context, accountID int64) ([]models.Expense, error) {
	rows, err := db.conn.QueryContext(ctx,
		expenseColumns+" WHERE e.account_id = ? ORDER BY e.spent_on DESC, e.id DESC",
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// GetExpense retrieves a single expense owned by accountID.
func (db *DB) GetExpense(ctx context.Context, accountID, id int64) (*models.Expense, error) {
	row := db.conn.QueryRowContext(ctx,
		expenseColumns+" WHERE e.id = ? AND e.account_id = ?",
		id, accountID,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return e, err
}

// CreateExpense inserts e. The category must belong to e.AccountID; on
// success e.ID and e.CategoryName are filled in.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		name, err := ownedCategoryName(ctx, tx, e.AccountID, e.CategoryID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			"INSERT INTO expenses (account_id, category_id, amount, description, spent_on) VALUES (?, ?, ?, ?, ?)",
			e.AccountID, e.CategoryID, e.Amount, e.Description, e.Date.Format(models.DateLayout),
		)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		if e.ID, err = result.LastInsertId(); err != nil {
			return err
		}
		e.CategoryName = name
		return nil
	})
}

// UpdateExpense overwrites an existing expense. Both the expense and its new
// category must belong to e.AccountID.
func (db *DB) UpdateExpense(ctx context.Context, e *models.Expense) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM expenses WHERE id = ? AND account_id = ?", e.ID, e.AccountID,
		).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find expense: %w", err)
		}

		name, err := ownedCategoryName(ctx, tx, e.AccountID, e.CategoryID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE expenses SET category_id = ?, amount = ?, description = ?, spent_on = ? WHERE id = ?",
			e.CategoryID, e.Amount, e.Description, e.Date.Format(models.DateLayout), e.ID,
		); err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		e.CategoryName = name
		return nil
	})
}

// DeleteExpense removes an expense owned by accountID.
func (db *DB) DeleteExpense(ctx context.Context, accountID, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM expenses WHERE id = ? AND account_id = ?", id, accountID,
		)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		return requireAffected(result)
	})
}

func ownedCategoryName(ctx context.Context, tx *sql.Tx, accountID, categoryID int64) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx,
		"SELECT name FROM categories WHERE id = ? AND account_id = ?", categoryID, accountID,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &models.ValidationError{Field: "category"}
	}
	if err != nil {
		return "", fmt.Errorf("find category: %w", err)
	}
	return name, nil
}
