package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/database"
	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/reconciliation"
	"lease-reconciliation-service/internal/repositories"
)

type PaymentService struct {
	db           *sql.DB
	paymentRepo  repositories.PaymentRepository
	contractRepo repositories.ContractRepository
	auditRepo    repositories.AuditRepository
	logger       *zap.Logger
}

func NewPaymentService(
	db *sql.DB,
	paymentRepo repositories.PaymentRepository,
	contractRepo repositories.ContractRepository,
	auditRepo repositories.AuditRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:           db,
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

type PaymentInput struct {
	ContractID    int64                 `json:"contract_id"`
	TenantID      int64                 `json:"tenant_id"`
	Amount        reconciliation.Amount `json:"amount"`
	PaymentDate   string                `json:"payment_date"`
	BankAccountID int64                 `json:"bank_account_id"`
}

// PaymentPreview is the advisory banner shown before submission.
type PaymentPreview struct {
	ContractID int64           `json:"contract_id"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	Amount     decimal.Decimal `json:"amount"`
	reconciliation.Classification
}

func (s *PaymentService) Preview(ctx context.Context, contractID int64, amount decimal.Decimal) (*PaymentPreview, error) {
	c, err := s.contractRepo.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &PaymentPreview{
		ContractID:     c.ID,
		RentAmount:     c.RentAmount,
		Amount:         amount,
		Classification: reconciliation.ClassifyPayment(c.RentAmount, amount),
	}, nil
}

// Record stores a payment with the status its classification against the
// contract rent implies.
func (s *PaymentService) Record(ctx context.Context, in PaymentInput, actor Actor) (*models.RentPayment, error) {
	if in.ContractID <= 0 {
		return nil, invalid("contract_id", "is required")
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if !leaseterm.ValidDate(in.PaymentDate) {
		return nil, invalid("payment_date", "must be a YYYY-MM-DD date")
	}
	c, err := s.contractRepo.GetContractByID(ctx, in.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if in.TenantID != 0 && in.TenantID != c.TenantID {
		return nil, invalid("tenant_id", "does not match the contract tenant")
	}

	classification := reconciliation.ClassifyPayment(c.RentAmount, in.Amount.Decimal)
	p := &models.RentPayment{
		TenantID:      c.TenantID,
		ContractID:    c.ID,
		Amount:        in.Amount.Decimal,
		PaymentDate:   in.PaymentDate,
		BankAccountID: in.BankAccountID,
		Status:        reconciliation.StatusFor(classification),
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.paymentRepo.InsertPayment(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return s.audit(ctx, tx, p.ID, models.AuditActionCreated, actor, map[string]any{
			"contract_id": p.ContractID,
			"amount":      p.Amount.String(),
			"status":      p.Status,
			"remaining":   classification.Remaining.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rent payment recorded",
		zap.Int64("payment_id", p.ID),
		zap.Int64("contract_id", p.ContractID),
		zap.String("status", p.Status),
	)
	return p, nil
}

func (s *PaymentService) Transition(ctx context.Context, id int64, target string, actor Actor) (*models.RentPayment, error) {
	if !models.ValidPaymentStatus(target) {
		return nil, invalid("status", "must be one of: paid, pending, overdue, partial")
	}
	p, err := s.paymentRepo.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if err := reconciliation.ValidateTransition(p.Status, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	previous := p.Status
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.paymentRepo.UpdatePaymentStatus(ctx, tx, id, previous, target)
		if errors.Is(err, repositories.ErrStatusChanged) {
			return fmt.Errorf("%w: payment %d is no longer %s", ErrInvalidTransition, id, previous)
		}
		if err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
		return s.audit(ctx, tx, id, models.AuditActionTransition, actor, map[string]any{
			"from": previous,
			"to":   target,
		})
	})
	if err != nil {
		return nil, err
	}
	p.Status = target
	return p, nil
}

func (s *PaymentService) audit(ctx context.Context, tx *sql.Tx, id int64, action string, actor Actor, details map[string]any) error {
	entry := &models.AuditEntry{
		EntityType:    models.EntityPayment,
		EntityID:      id,
		Action:        action,
		Details:       auditDetails(details),
		UserID:        actor.user(),
		CorrelationID: actor.CorrelationID,
	}
	if err := s.auditRepo.CreateAuditEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (s *PaymentService) List(ctx context.Context, filter repositories.PaymentFilter, p repositories.Pagination) ([]*models.RentPayment, repositories.Page, error) {
	p = p.Normalize()
	payments, total, err := s.paymentRepo.ListPayments(ctx, filter, p)
	if err != nil {
		return nil, repositories.Page{}, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		payments = []*models.RentPayment{}
	}
	return payments, repositories.NewPage(p, total), nil
}

func (s *PaymentService) Summary(ctx context.Context) (reconciliation.Summary, error) {
	payments, err := s.paymentRepo.ListAllPayments(ctx)
	if err != nil {
		return reconciliation.Summary{}, fmt.Errorf("failed to list payments: %w", err)
	}
	return reconciliation.Summarize(payments), nil
}

// ReconcilePeriod reconciles a contract's payments for one YYYY-MM period.
func (s *PaymentService) ReconcilePeriod(ctx context.Context, contractID int64, period string) (*reconciliation.PeriodReconciliation, error) {
	if !reconciliation.ValidPeriod(period) {
		return nil, invalid("period", "must be a YYYY-MM month")
	}
	c, err := s.contractRepo.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	payments, err := s.paymentRepo.ListPaymentsByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	result := reconciliation.ReconcilePeriod(c, payments, period)
	return &result, nil
}
