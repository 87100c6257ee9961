package ledger

import (
	"context"
	"strings"

	"pocketledger/internal/log"
	"pocketledger/internal/models"
)

// ListCategories returns the account's categories in creation order.
func (s *Service) ListCategories(ctx context.Context, account *models.Account) ([]models.Category, error) {
	return s.db.ListCategories(ctx, account.ID)
}

// CreateCategory adds a named category to the account.
func (s *Service) CreateCategory(ctx context.Context, account *models.Account, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxCategoryName {
		return nil, &models.ValidationError{Field: "name", Reason: "invalid category name"}
	}
	c, err := s.db.CreateCategory(ctx, account.ID, name)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "category created",
		log.FieldOperation, log.OpCreate, log.FieldAccountID, account.ID, log.FieldRecordID, c.ID)
	return c, nil
}

// DeleteCategory removes an unused category owned by the account.
func (s *Service) DeleteCategory(ctx context.Context, account *models.Account, id int64) error {
	if err := s.db.DeleteCategory(ctx, account.ID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "category deleted",
		log.FieldOperation, log.OpDelete, log.FieldAccountID, account.ID, log.FieldRecordID, id)
	return nil
}
