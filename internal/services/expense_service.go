package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lease-reconciliation-service/internal/database"
	"lease-reconciliation-service/internal/expense"
	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/reconciliation"
	"lease-reconciliation-service/internal/repositories"
)

type ExpenseService struct {
	db          *sql.DB
	expenseRepo repositories.ExpenseRepository
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
}

func NewExpenseService(db *sql.DB, expenseRepo repositories.ExpenseRepository, auditRepo repositories.AuditRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		db:          db,
		expenseRepo: expenseRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// ExpenseInput carries no amount; it is always quantity × unit price.
type ExpenseInput struct {
	Description string                `json:"description"`
	Quantity    reconciliation.Amount `json:"quantity"`
	UnitPrice   reconciliation.Amount `json:"unit_price"`
	ExpenseDate string                `json:"expense_date"`
	VendorID    *int64                `json:"vendor_id"`
}

func (s *ExpenseService) Record(ctx context.Context, projectID int64, in ExpenseInput, actor Actor) (*models.ProjectExpense, error) {
	if projectID <= 0 {
		return nil, invalid("project_id", "is required")
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, invalid("description", "is required")
	}
	if !in.Quantity.IsPositive() {
		return nil, invalid("quantity", "must be greater than zero")
	}
	if in.UnitPrice.IsNegative() {
		return nil, invalid("unit_price", "must be non-negative")
	}
	if !leaseterm.ValidDate(in.ExpenseDate) {
		return nil, invalid("expense_date", "must be a YYYY-MM-DD date")
	}

	e := &models.ProjectExpense{
		ProjectID:   projectID,
		Description: in.Description,
		Quantity:    in.Quantity.Decimal,
		UnitPrice:   in.UnitPrice.Decimal,
		Amount:      expense.LineAmount(in.Quantity.Decimal, in.UnitPrice.Decimal),
		ExpenseDate: in.ExpenseDate,
		VendorID:    in.VendorID,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.expenseRepo.InsertExpense(ctx, tx, e); err != nil {
			return fmt.Errorf("failed to record expense: %w", err)
		}
		entry := &models.AuditEntry{
			EntityType: models.EntityExpense,
			EntityID:   e.ID,
			Action:     models.AuditActionCreated,
			Details: auditDetails(map[string]any{
				"project_id": e.ProjectID,
				"amount":     e.Amount.String(),
			}),
			UserID:        actor.user(),
			CorrelationID: actor.CorrelationID,
		}
		if err := s.auditRepo.CreateAuditEntry(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to create audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project expense recorded", zap.Int64("project_id", projectID), zap.String("amount", e.Amount.String()))
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context, projectID int64) ([]*models.ProjectExpense, error) {
	expenses, err := s.expenseRepo.ListExpensesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if expenses == nil {
		expenses = []*models.ProjectExpense{}
	}
	return expenses, nil
}
