package repositories

import (
	"context"
	"database/sql"
	"errors"

	"lease-reconciliation-service/internal/models"
)

type PropertyRepository interface {
	GetPropertyByID(ctx context.Context, id int64) (*models.Property, error)
	ListProperties(ctx context.Context, p Pagination) ([]*models.Property, int, error)
	ListAllProperties(ctx context.Context) ([]*models.Property, error)
	UpdatePropertyStatus(ctx context.Context, tx *sql.Tx, id int64, status string) error
}

type propertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, name, status, monthly_rent, address, created_at, updated_at`

func scanProperty(s scanner) (*models.Property, error) {
	p := &models.Property{}
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Status,
		&p.MonthlyRent,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanProperties(rows *sql.Rows) ([]*models.Property, error) {
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *propertyRepository) GetPropertyByID(ctx context.Context, id int64) (*models.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepository) ListProperties(ctx context.Context, p Pagination) ([]*models.Property, int, error) {
	p = p.Normalize()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY name, id LIMIT ? OFFSET ?`, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	properties, err := scanProperties(rows)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *propertyRepository) ListAllProperties(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return scanProperties(rows)
}

// UpdatePropertyStatus sets the advisory occupancy flag.
func (r *propertyRepository) UpdatePropertyStatus(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	result, err := tx.ExecContext(ctx, `UPDATE properties SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
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
