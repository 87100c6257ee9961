package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"pocketledger/internal/log"
	"pocketledger/internal/models"
)

// ListExpenses returns the account's expenses, newest date first.
func (s *Service) ListExpenses(ctx context.Context, account *models.Account) ([]models.Expense, error) {
	return s.db.ListExpenses(ctx, account.ID)
}

// GetExpense returns one of the account's expenses.
func (s *Service) GetExpense(ctx context.Context, account *models.Account, id int64) (*models.Expense, error) {
	return s.db.GetExpense(ctx, account.ID, id)
}

// CreateExpense validates in and records it for the account.
func (s *Service) CreateExpense(ctx context.Context, account *models.Account, in ExpenseInput) (*models.Expense, error) {
	e, err := in.parse(account.ID)
	if err != nil {
		return nil, err
	}
	if err := s.db.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "expense created",
		log.FieldOperation, log.OpCreate, log.FieldAccountID, account.ID, log.FieldRecordID, e.ID)
	return e, nil
}

// UpdateExpense replaces every field of one of the account's expenses.
func (s *Service) UpdateExpense(ctx context.Context, account *models.Account, id int64, in ExpenseInput) (*models.Expense, error) {
	e, err := in.parse(account.ID)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.db.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "expense updated",
		log.FieldOperation, log.OpUpdate, log.FieldAccountID, account.ID, log.FieldRecordID, id)
	return e, nil
}

// DeleteExpense removes one of the account's expenses.
func (s *Service) DeleteExpense(ctx context.Context, account *models.Account, id int64) error {
	if err := s.db.DeleteExpense(ctx, account.ID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "expense deleted",
		log.FieldOperation, log.OpDelete, log.FieldAccountID, account.ID, log.FieldRecordID, id)
	return nil
}

// Total sums the amounts of all the account's expenses.
func (s *Service) Total(ctx context.Context, account *models.Account) (decimal.Decimal, error) {
	expenses, err := s.db.ListExpenses(ctx, account.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return Sum(expenses), nil
}

// Sum adds up expense amounts exactly.
func Sum(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
