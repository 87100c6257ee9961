package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pocketledger/internal/auth"
	"pocketledger/internal/log"
	"pocketledger/internal/models"
)

// Register creates an account and seeds its default categories. The password
// is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, password, currency string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &models.ValidationError{Field: "username", Reason: "username is required"}
	}
	if password == "" {
		return nil, &models.ValidationError{Field: "password", Reason: "password is required"}
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, &models.ValidationError{Field: "password", Reason: "password too long"}
	}
	cur, err := models.ParseCurrency(strings.TrimSpace(currency), s.defaultCurrency)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.db.CreateAccount(ctx, username, hash, cur, DefaultCategories)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account registered",
		log.FieldOperation, log.OpRegister,
		log.FieldAccountID, account.ID,
		"currency", account.Currency)
	return account, nil
}

// Authenticate verifies credentials and opens a new session. Any session
// identified by priorToken is ended first, whatever the outcome.
func (s *Service) Authenticate(ctx context.Context, priorToken, username, password string) (*models.Session, error) {
	s.EndSession(ctx, priorToken)

	account, err := s.db.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		auth.CheckDummy(password)
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !auth.CheckPassword(password, account.PasswordHash) {
		s.logger.WarnContext(ctx, "failed login", log.FieldAccountID, account.ID)
		return nil, models.ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now()
	expiresAt := now.Add(s.sessionDuration)
	if err := s.db.CreateSession(ctx, token, account.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "session started", log.FieldOperation, log.OpLogin, log.FieldAccountID, account.ID)
	return &models.Session{Token: token, Account: account, ExpiresAt: expiresAt, LastActivity: now}, nil
}

// Resolve returns the live session for token or models.ErrUnauthenticated.
// Sessions in the second half of their lifetime are extended.
func (s *Service) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated
	}
	session, err := s.db.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if session.ExpiresAt.Sub(now) < s.sessionDuration/2 {
		newExpiresAt := now.Add(s.sessionDuration)
		if err := s.db.RenewSession(ctx, token, newExpiresAt); err != nil {
			// Keep the current session; renewal is retried on the next request.
			s.logger.WarnContext(ctx, "session renewal failed", log.FieldError, err)
		} else {
			session.ExpiresAt = newExpiresAt
			session.LastActivity = now
		}
	}
	return session, nil
}

// EndSession revokes the session for token. It is idempotent and never fails;
// storage errors are only logged.
func (s *Service) EndSession(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.db.DeleteSession(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete session", log.FieldOperation, log.OpLogout, log.FieldError, err)
	}
}

// UpdateCurrency changes the account's display currency.
func (s *Service) UpdateCurrency(ctx context.Context, account *models.Account, currency string) (*models.Account, error) {
	cur, err := models.ParseCurrency(strings.TrimSpace(currency), "")
	if err != nil || cur == "" {
		return nil, &models.ValidationError{Field: "currency"}
	}
	if err := s.db.UpdateAccountCurrency(ctx, account.ID, cur); err != nil {
		return nil, err
	}
	updated := *account
	updated.Currency = cur
	return &updated, nil
}

// CleanExpiredSessions drops sessions past their expiry.
func (s *Service) CleanExpiredSessions(ctx context.Context) (int64, error) {
	return s.db.CleanExpiredSessions(ctx)
}

// AccountCount returns the number of registered accounts.
func (s *Service) AccountCount(ctx context.Context) (int, error) {
	return s.db.AccountCount(ctx)
}
