package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/availability"
	"lease-reconciliation-service/internal/database"
	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/repositories"
)

type ContractService struct {
	db           *sql.DB
	contractRepo repositories.ContractRepository
	propertyRepo repositories.PropertyRepository
	tenantRepo   repositories.TenantRepository
	auditRepo    repositories.AuditRepository
	policy       availability.Policy
	logger       *zap.Logger
	now          func() time.Time
}

func NewContractService(
	db *sql.DB,
	contractRepo repositories.ContractRepository,
	propertyRepo repositories.PropertyRepository,
	tenantRepo repositories.TenantRepository,
	auditRepo repositories.AuditRepository,
	policy availability.Policy,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		db:           db,
		contractRepo: contractRepo,
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		auditRepo:    auditRepo,
		policy:       policy,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock replaces the source of "today".
func (s *ContractService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ContractService) today() string {
	return leaseterm.Today(s.now())
}

// ContractInput is the contract form. The end date is derived from
// StartDate and Months and cannot be supplied.
type ContractInput struct {
	ContractNumber string          `json:"contract_number"`
	TenantID       int64           `json:"tenant_id"`
	PropertyID     int64           `json:"property_id"`
	RentAmount     decimal.Decimal `json:"rent_amount"`
	StartDate      string          `json:"start_date"`
	Months         int             `json:"months"`
	Terms          string          `json:"terms"`
	Status         string          `json:"status"`
}

// ContractDetail is a contract as shown to operators, with its derived
// duration and effective status.
type ContractDetail struct {
	*models.Contract
	Months          int    `json:"months"`
	EffectiveStatus string `json:"effective_status"`
}

func (s *ContractService) detail(c *models.Contract) *ContractDetail {
	return &ContractDetail{
		Contract:        c,
		Months:          leaseterm.ComputeMonthsBetween(c.StartDate, c.EndDate),
		EffectiveStatus: leaseterm.EffectiveStatus(c, s.today()),
	}
}

func validateContractInput(in *ContractInput) error {
	in.ContractNumber = strings.TrimSpace(in.ContractNumber)
	if in.ContractNumber == "" {
		return invalid("contract_number", "is required")
	}
	if in.TenantID <= 0 {
		return invalid("tenant_id", "is required")
	}
	if in.PropertyID <= 0 {
		return invalid("property_id", "is required")
	}
	if in.RentAmount.IsNegative() {
		return invalid("rent_amount", "must be non-negative")
	}
	if !leaseterm.ValidDate(in.StartDate) {
		return invalid("start_date", "must be a YYYY-MM-DD date")
	}
	if in.Months < 1 {
		return invalid("months", "must be at least 1")
	}
	if in.Status == "" {
		in.Status = models.ContractActive
	}
	if !models.ValidContractStatus(in.Status) {
		return invalid("status", "must be one of: active, expired, terminated")
	}
	return nil
}

func (in *ContractInput) apply(c *models.Contract) {
	term := leaseterm.Recompute(leaseterm.TermForm{StartDate: in.StartDate, Months: in.Months})
	c.ContractNumber = in.ContractNumber
	c.TenantID = in.TenantID
	c.PropertyID = in.PropertyID
	c.RentAmount = in.RentAmount
	c.StartDate = term.StartDate
	c.EndDate = term.EndDate
	c.Terms = in.Terms
	c.Status = in.Status
}

func (s *ContractService) Create(ctx context.Context, in ContractInput, actor Actor) (*ContractDetail, error) {
	if err := validateContractInput(&in); err != nil {
		return nil, err
	}
	if err := s.requireParties(ctx, in.TenantID, in.PropertyID); err != nil {
		return nil, err
	}

	c := &models.Contract{}
	in.apply(c)

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.checkAvailability(ctx, tx, c); err != nil {
			return err
		}
		if err := s.contractRepo.InsertContract(ctx, tx, c); err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}
		if err := s.syncPropertyStatus(ctx, tx, c.PropertyID, c); err != nil {
			return err
		}
		return s.audit(ctx, tx, c, models.AuditActionCreated, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.Int64("contract_id", c.ID),
		zap.Int64("property_id", c.PropertyID),
		zap.String("end_date", c.EndDate),
	)
	return s.detail(c), nil
}

func (s *ContractService) Update(ctx context.Context, id int64, in ContractInput, actor Actor) (*ContractDetail, error) {
	if err := validateContractInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.contractRepo.GetContractByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if err := s.requireParties(ctx, in.TenantID, in.PropertyID); err != nil {
		return nil, err
	}

	var c models.Contract
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// The edit applies to the row as it stands under lock, not as read above.
		existing, err := s.contractRepo.LockContractByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to lock contract: %w", err)
		}
		previousProperty := existing.PropertyID
		c = *existing
		in.apply(&c)

		if err := s.checkAvailability(ctx, tx, &c); err != nil {
			return err
		}
		if err := s.contractRepo.UpdateContract(ctx, tx, &c); err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}
		if err := s.syncPropertyStatus(ctx, tx, c.PropertyID, &c); err != nil {
			return err
		}
		if previousProperty != c.PropertyID {
			if err := s.syncPropertyStatus(ctx, tx, previousProperty, nil); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, &c, models.AuditActionUpdated, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract updated", zap.Int64("contract_id", c.ID), zap.String("status", c.Status))
	return s.detail(&c), nil
}

func (s *ContractService) requireParties(ctx context.Context, tenantID, propertyID int64) error {
	if _, err := s.tenantRepo.GetTenantByID(ctx, tenantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("tenant_id", "does not exist")
		}
		return fmt.Errorf("failed to get tenant: %w", err)
	}
	if _, err := s.propertyRepo.GetPropertyByID(ctx, propertyID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("property_id", "does not exist")
		}
		return fmt.Errorf("failed to get property: %w", err)
	}
	return nil
}

// checkAvailability rejects an active contract on a property another
// contract still holds. The property's contracts are read with row locks.
func (s *ContractService) checkAvailability(ctx context.Context, tx *sql.Tx, c *models.Contract) error {
	existing, err := s.contractRepo.LockContractsByProperty(ctx, tx, c.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to load property contracts: %w", err)
	}
	blocking := availability.Conflicts(existing, c, s.policy, s.today())
	if len(blocking) == 0 {
		return nil
	}
	ids := make([]string, 0, len(blocking))
	for _, b := range blocking {
		ids = append(ids, b.ContractNumber)
	}
	return fmt.Errorf("%w: property %d is held by contract %s", ErrPropertyLeased, c.PropertyID, strings.Join(ids, ", "))
}

// syncPropertyStatus keeps the advisory property status in line with the
// derived occupancy. changed replaces its stored version in the snapshot.
func (s *ContractService) syncPropertyStatus(ctx context.Context, tx *sql.Tx, propertyID int64, changed *models.Contract) error {
	contracts, err := s.contractRepo.LockContractsByProperty(ctx, tx, propertyID)
	if err != nil {
		return fmt.Errorf("failed to load property contracts: %w", err)
	}
	if changed != nil {
		replaced := false
		for i, existing := range contracts {
			if existing.ID == changed.ID {
				contracts[i] = changed
				replaced = true
			}
		}
		if !replaced {
			contracts = append(contracts, changed)
		}
	}

	status := models.PropertyAvailable
	if _, leased := availability.LeasedPropertyIDs(contracts, s.today(), 0)[propertyID]; leased {
		status = models.PropertyOccupied
	}
	if err := s.propertyRepo.UpdatePropertyStatus(ctx, tx, propertyID, status); err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}
	return nil
}

func (s *ContractService) audit(ctx context.Context, tx *sql.Tx, c *models.Contract, action string, actor Actor) error {
	entry := &models.AuditEntry{
		EntityType: models.EntityContract,
		EntityID:   c.ID,
		Action:     action,
		Details: auditDetails(map[string]any{
			"property_id": c.PropertyID,
			"status":      c.Status,
			"start_date":  c.StartDate,
			"end_date":    c.EndDate,
			"rent_amount": c.RentAmount.String(),
		}),
		UserID:        actor.user(),
		CorrelationID: actor.CorrelationID,
	}
	if err := s.auditRepo.CreateAuditEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (s *ContractService) Get(ctx context.Context, id int64) (*ContractDetail, error) {
	c, err := s.contractRepo.GetContractByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return s.detail(c), nil
}

func (s *ContractService) List(ctx context.Context, filter repositories.ContractFilter, p repositories.Pagination) ([]*ContractDetail, repositories.Page, error) {
	p = p.Normalize()
	contracts, total, err := s.contractRepo.ListContracts(ctx, filter, p)
	if err != nil {
		return nil, repositories.Page{}, fmt.Errorf("failed to list contracts: %w", err)
	}
	details := make([]*ContractDetail, 0, len(contracts))
	for _, c := range contracts {
		details = append(details, s.detail(c))
	}
	return details, repositories.NewPage(p, total), nil
}

// SelectableProperties builds the property choices for the contract form.
// contractID is the contract being edited (0 when creating) and tenantID the
// selected tenant (0 when none).
func (s *ContractService) SelectableProperties(ctx context.Context, contractID, tenantID int64) ([]*models.Property, error) {
	var currentPropertyID int64
	if contractID != 0 {
		c, err := s.contractRepo.GetContractByID(ctx, contractID)
		if err != nil {
			return nil, fmt.Errorf("failed to get contract: %w", err)
		}
		currentPropertyID = c.PropertyID
	}

	var tenantPropertyIDs []int64
	if tenantID != 0 {
		ids, err := s.tenantRepo.GetTenantPropertyIDs(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get tenant properties: %w", err)
		}
		tenantPropertyIDs = ids
	}

	contracts, err := s.contractRepo.ListAllContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	properties, err := s.propertyRepo.ListAllProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	leased := availability.LeasedPropertyIDs(contracts, s.today(), contractID)
	return availability.SelectableProperties(properties, leased, currentPropertyID, tenantPropertyIDs), nil
}

// LeasedPropertyIDs returns the currently leased properties in ascending order.
func (s *ContractService) LeasedPropertyIDs(ctx context.Context) ([]int64, error) {
	contracts, err := s.contractRepo.ListAllContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	leased := availability.LeasedPropertyIDs(contracts, s.today(), 0)
	ids := make([]int64, 0, len(leased))
	for id := range leased {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// DoubleLeased reports properties already held by more than one contract.
func (s *ContractService) DoubleLeased(ctx context.Context) ([]availability.Conflict, error) {
	contracts, err := s.contractRepo.ListAllContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	conflicts := availability.DoubleLeased(contracts, s.today())
	if len(conflicts) > 0 {
		s.logger.Warn("properties with more than one governing contract", zap.Int("count", len(conflicts)))
	}
	return conflicts, nil
}
