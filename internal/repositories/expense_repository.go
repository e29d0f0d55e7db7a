package repositories

import (
	"context"
	"database/sql"

	"lease-reconciliation-service/internal/models"
)

type ExpenseRepository interface {
	InsertExpense(ctx context.Context, tx *sql.Tx, e *models.ProjectExpense) error
	ListExpensesByProject(ctx context.Context, projectID int64) ([]*models.ProjectExpense, error)
}

type expenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) InsertExpense(ctx context.Context, tx *sql.Tx, e *models.ProjectExpense) error {
	query := `
		INSERT INTO project_expenses (
			project_id, description, quantity, unit_price, amount, expense_date, vendor_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var vendorID sql.NullInt64
	if e.VendorID != nil {
		vendorID = sql.NullInt64{Int64: *e.VendorID, Valid: true}
	}
	result, err := tx.ExecContext(ctx, query,
		e.ProjectID,
		e.Description,
		e.Quantity,
		e.UnitPrice,
		e.Amount,
		e.ExpenseDate,
		vendorID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *expenseRepository) ListExpensesByProject(ctx context.Context, projectID int64) ([]*models.ProjectExpense, error) {
	query := `
		SELECT id, project_id, description, quantity, unit_price, amount,
		       DATE_FORMAT(expense_date, '%Y-%m-%d'), vendor_id, created_at
		FROM project_expenses
		WHERE project_id = ?
		ORDER BY expense_date, id
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.ProjectExpense
	for rows.Next() {
		e := &models.ProjectExpense{}
		var vendorID sql.NullInt64
		err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.Description,
			&e.Quantity,
			&e.UnitPrice,
			&e.Amount,
			&e.ExpenseDate,
			&vendorID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if vendorID.Valid {
			id := vendorID.Int64
			e.VendorID = &id
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}
