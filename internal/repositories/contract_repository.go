package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lease-reconciliation-service/internal/models"
)

type ContractFilter struct {
	TenantID   int64
	PropertyID int64
	Status     string
}

type ContractRepository interface {
	InsertContract(ctx context.Context, tx *sql.Tx, c *models.Contract) error
	UpdateContract(ctx context.Context, tx *sql.Tx, c *models.Contract) error
	GetContractByID(ctx context.Context, id int64) (*models.Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter, p Pagination) ([]*models.Contract, int, error)
	ListAllContracts(ctx context.Context) ([]*models.Contract, error)
	// LockContractsByProperty reads a property's contracts inside tx with
	// row locks so concurrent saves on the same property serialise.
	LockContractsByProperty(ctx context.Context, tx *sql.Tx, propertyID int64) ([]*models.Contract, error)
	LockContractByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Contract, error)
}

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, contract_number, tenant_id, property_id, rent_amount,
		       DATE_FORMAT(start_date, '%Y-%m-%d'), DATE_FORMAT(end_date, '%Y-%m-%d'),
		       terms, status, created_at, updated_at`

func scanContract(s scanner) (*models.Contract, error) {
	c := &models.Contract{}
	err := s.Scan(
		&c.ID,
		&c.ContractNumber,
		&c.TenantID,
		&c.PropertyID,
		&c.RentAmount,
		&c.StartDate,
		&c.EndDate,
		&c.Terms,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanContracts(rows *sql.Rows) ([]*models.Contract, error) {
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) InsertContract(ctx context.Context, tx *sql.Tx, c *models.Contract) error {
	query := `
		INSERT INTO contracts (
			contract_number, tenant_id, property_id, rent_amount,
			start_date, end_date, terms, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		c.ContractNumber,
		c.TenantID,
		c.PropertyID,
		c.RentAmount,
		c.StartDate,
		c.EndDate,
		c.Terms,
		c.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *contractRepository) UpdateContract(ctx context.Context, tx *sql.Tx, c *models.Contract) error {
	query := `
		UPDATE contracts
		SET contract_number = ?,
			tenant_id = ?,
			property_id = ?,
			rent_amount = ?,
			start_date = ?,
			end_date = ?,
			terms = ?,
			status = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		c.ContractNumber,
		c.TenantID,
		c.PropertyID,
		c.RentAmount,
		c.StartDate,
		c.EndDate,
		c.Terms,
		c.Status,
		time.Now(),
		c.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contractRepository) GetContractByID(ctx context.Context, id int64) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = ?`
	c, err := scanContract(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) ListContracts(ctx context.Context, filter ContractFilter, p Pagination) ([]*models.Contract, int, error) {
	p = p.Normalize()

	var conditions []string
	var args []any
	if filter.TenantID != 0 {
		conditions = append(conditions, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.PropertyID != 0 {
		conditions = append(conditions, "property_id = ?")
		args = append(args, filter.PropertyID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	clause := where(conditions)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contractColumns + ` FROM contracts` + clause + ` ORDER BY start_date DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, p.PerPage, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	contracts, err := scanContracts(rows)
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *contractRepository) ListAllContracts(ctx context.Context) ([]*models.Contract, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contractColumns+` FROM contracts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

func (r *contractRepository) LockContractsByProperty(ctx context.Context, tx *sql.Tx, propertyID int64) ([]*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE property_id = ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

func (r *contractRepository) LockContractByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = ? FOR UPDATE`
	c, err := scanContract(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
