package repositories

import (
	"context"
	"database/sql"
	"errors"

	"lease-reconciliation-service/internal/models"
)

type TenantRepository interface {
	GetTenantByID(ctx context.Context, id int64) (*models.Tenant, error)
	GetTenantPropertyIDs(ctx context.Context, tenantID int64) ([]int64, error)
}

type tenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// GetTenantByID loads a tenant together with its pre-associated properties.
func (r *tenantRepository) GetTenantByID(ctx context.Context, id int64) (*models.Tenant, error) {
	t := &models.Tenant{}
	query := `
		SELECT id, name, phone, email, created_at, updated_at
		FROM tenants
		WHERE id = ?
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Phone,
		&t.Email,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.PropertyIDs, err = r.GetTenantPropertyIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepository) GetTenantPropertyIDs(ctx context.Context, tenantID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT property_id FROM tenant_properties WHERE tenant_id = ? ORDER BY property_id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
