package repositories

import (
	"context"
	"database/sql"

	"lease-reconciliation-service/internal/models"
)

type AuditRepository interface {
	CreateAuditEntry(ctx context.Context, tx *sql.Tx, audit *models.AuditEntry) error
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateAuditEntry(ctx context.Context, tx *sql.Tx, audit *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (
			entity_type, entity_id, action, details, user_id, correlation_id
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	details := []byte(audit.Details)
	if len(details) == 0 {
		details = []byte("{}")
	}
	result, err := tx.ExecContext(ctx, query,
		audit.EntityType,
		audit.EntityID,
		audit.Action,
		details,
		audit.UserID,
		audit.CorrelationID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	audit.ID = id
	return nil
}
