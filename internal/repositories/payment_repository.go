package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/reconciliation"
)

type PaymentFilter struct {
	ContractID int64
	TenantID   int64
	Status     string
	FromDate   string
	ToDate     string
}

type PaymentRepository interface {
	InsertPayment(ctx context.Context, tx *sql.Tx, p *models.RentPayment) error
	GetPaymentByID(ctx context.Context, id int64) (*models.RentPayment, error)
	UpdatePaymentStatus(ctx context.Context, tx *sql.Tx, id int64, from, to string) error
	ListPayments(ctx context.Context, filter PaymentFilter, p Pagination) ([]*models.RentPayment, int, error)
	ListAllPayments(ctx context.Context) ([]*models.RentPayment, error)
	ListPaymentsByContract(ctx context.Context, contractID int64) ([]*models.RentPayment, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, tenant_id, contract_id, amount, DATE_FORMAT(payment_date, '%Y-%m-%d'),
		       bank_account_id, status, created_at, updated_at`

// scanPayment reads amount as text so a malformed stored value is summed as
// zero instead of failing the whole listing.
func scanPayment(s scanner) (*models.RentPayment, error) {
	p := &models.RentPayment{}
	var amount sql.NullString
	var bankAccountID sql.NullInt64
	err := s.Scan(
		&p.ID,
		&p.TenantID,
		&p.ContractID,
		&amount,
		&p.PaymentDate,
		&bankAccountID,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Amount = reconciliation.SafeAmount(amount)
	p.BankAccountID = bankAccountID.Int64
	return p, nil
}

func scanPayments(rows *sql.Rows) ([]*models.RentPayment, error) {
	defer rows.Close()

	var payments []*models.RentPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) InsertPayment(ctx context.Context, tx *sql.Tx, p *models.RentPayment) error {
	query := `
		INSERT INTO rent_payments (
			tenant_id, contract_id, amount, payment_date, bank_account_id, status
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	var bankAccountID sql.NullInt64
	if p.BankAccountID != 0 {
		bankAccountID = sql.NullInt64{Int64: p.BankAccountID, Valid: true}
	}
	result, err := tx.ExecContext(ctx, query,
		p.TenantID,
		p.ContractID,
		p.Amount,
		p.PaymentDate,
		bankAccountID,
		p.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *paymentRepository) GetPaymentByID(ctx context.Context, id int64) (*models.RentPayment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM rent_payments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePaymentStatus moves a payment from one status to another. The update
// only applies while the row still holds from; otherwise ErrStatusChanged is
// returned.
func (r *paymentRepository) UpdatePaymentStatus(ctx context.Context, tx *sql.Tx, id int64, from, to string) error {
	query := `
		UPDATE rent_payments
		SET status = ?,
		    updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := tx.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *paymentRepository) ListPayments(ctx context.Context, filter PaymentFilter, p Pagination) ([]*models.RentPayment, int, error) {
	p = p.Normalize()

	var conditions []string
	var args []any
	if filter.ContractID != 0 {
		conditions = append(conditions, "contract_id = ?")
		args = append(args, filter.ContractID)
	}
	if filter.TenantID != 0 {
		conditions = append(conditions, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.FromDate != "" {
		conditions = append(conditions, "payment_date >= ?")
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		conditions = append(conditions, "payment_date <= ?")
		args = append(args, filter.ToDate)
	}
	clause := where(conditions)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rent_payments`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + ` FROM rent_payments` + clause + ` ORDER BY payment_date DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, p.PerPage, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	payments, err := scanPayments(rows)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepository) ListAllPayments(ctx context.Context) ([]*models.RentPayment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM rent_payments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanPayments(rows)
}

func (r *paymentRepository) ListPaymentsByContract(ctx context.Context, contractID int64) ([]*models.RentPayment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM rent_payments WHERE contract_id = ? ORDER BY payment_date, id`, contractID)
	if err != nil {
		return nil, err
	}
	return scanPayments(rows)
}
